package contracts

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFullVersionString(t *testing.T) {
	s := GetFullVersionString("salesreport")

	assert.Contains(t, s, "salesreport v"+Version)
	assert.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Contains(t, s, "output format: "+OutputFormatVersion)
}
