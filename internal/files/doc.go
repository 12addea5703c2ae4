// Package files locates input files.
//
// Discovery lets a run point at a folder of exports instead of a single
// file: the newest file with a supported extension is picked.
//
//	discovery := files.NewDiscovery(validation.SupportedInputExtensions, logger)
//	path, err := discovery.ResolveInput("exports/")
package files
