package vkr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestClassifyReportFlags(t *testing.T) {
	cases := []struct {
		flags    vk.DebugReportFlags
		severity DebugSeverity
		category DebugCategory
	}{
		{vk.DebugReportFlags(vk.DebugReportErrorBit), SeverityError, CategoryValidation},
		{vk.DebugReportFlags(vk.DebugReportWarningBit), SeverityWarning, CategoryValidation},
		{vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit), SeverityWarning, CategoryPerformance},
		{vk.DebugReportFlags(vk.DebugReportDebugBit), SeverityVerbose, CategoryGeneral},
		{vk.DebugReportFlags(vk.DebugReportInformationBit), SeverityInfo, CategoryGeneral},
	}

	for _, c := range cases {
		severity, category := classifyReportFlags(c.flags)
		assert.Equal(t, c.severity, severity, "flags %v", c.flags)
		assert.Equal(t, c.category, category, "flags %v", c.flags)
	}
}

func TestClassifyReportFlagsErrorWins(t *testing.T) {
	// Drivers can set several bits at once; the most severe wins.
	severity, _ := classifyReportFlags(vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit))
	assert.Equal(t, SeverityError, severity)
}

func TestDebugFilters(t *testing.T) {
	all := AllSeverities()
	for _, s := range []DebugSeverity{SeverityVerbose, SeverityInfo, SeverityWarning, SeverityError} {
		assert.True(t, all.pass(s))
	}

	errorsOnly := DebugSeverityFilter{Error: true}
	assert.True(t, errorsOnly.pass(SeverityError))
	assert.False(t, errorsOnly.pass(SeverityWarning))
	assert.False(t, errorsOnly.pass(SeverityInfo))

	allCat := AllCategories()
	for _, c := range []DebugCategory{CategoryGeneral, CategoryValidation, CategoryPerformance} {
		assert.True(t, allCat.pass(c))
	}

	noPerf := DebugCategoryFilter{General: true, Validation: true}
	assert.True(t, noPerf.pass(CategoryValidation))
	assert.False(t, noPerf.pass(CategoryPerformance))
}

func TestVersionVKVersion(t *testing.T) {
	v := Version{Major: 1, Minor: 2, Patch: 3}
	assert.Equal(t, uint32(vk.MakeVersion(1, 2, 3)), uint32(v.VKVersion()))
}

func TestAppEnableExtension(t *testing.T) {
	app := &App{}
	app.EnableExtension("VK_KHR_surface").EnableExtension("VK_EXT_debug_report")
	assert.Equal(t, []string{"VK_KHR_surface", "VK_EXT_debug_report"}, app.EnabledExtensions)
}
