package vkr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestMissingExtensions(t *testing.T) {
	supported := []string{"VK_KHR_swapchain", "VK_EXT_descriptor_indexing"}

	assert.Empty(t, MissingExtensions(supported, []string{"VK_KHR_swapchain"}))
	assert.Empty(t, MissingExtensions(supported, nil))
	assert.Equal(t, []string{"VK_KHR_maintenance1"},
		MissingExtensions(supported, []string{"VK_KHR_swapchain", "VK_KHR_maintenance1"}))
}

func TestMissingFeaturesCoreFeatures(t *testing.T) {
	feats := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy: vk.True,
		GeometryShader:    vk.False,
	}

	missing := MissingFeatures(feats, nil, []Feature{FeatureSamplerAnisotropy, FeatureGeometryShader})
	assert.Equal(t, []Feature{FeatureGeometryShader}, missing)
}

func TestMissingFeaturesExtensionBacked(t *testing.T) {
	var feats vk.PhysicalDeviceFeatures

	// Runtime descriptor arrays come from an extension, not the core
	// feature struct.
	missing := MissingFeatures(feats, []string{"VK_EXT_descriptor_indexing"}, []Feature{FeatureRuntimeDescriptorArray})
	assert.Empty(t, missing)

	missing = MissingFeatures(feats, nil, []Feature{FeatureRuntimeDescriptorArray})
	assert.Equal(t, []Feature{FeatureRuntimeDescriptorArray}, missing)
}

func TestFeaturesToEnableOnlyRequested(t *testing.T) {
	feats := FeaturesToEnable([]Feature{FeatureSamplerAnisotropy, FeatureFillModeNonSolid})
	assert.Equal(t, vk.Bool32(vk.True), feats.SamplerAnisotropy)
	assert.Equal(t, vk.Bool32(vk.True), feats.FillModeNonSolid)
	assert.Equal(t, vk.Bool32(vk.False), feats.GeometryShader)
	assert.Equal(t, vk.Bool32(vk.False), feats.WideLines)
}

func TestFeatureDeviceExtensions(t *testing.T) {
	assert.Empty(t, featureDeviceExtensions([]Feature{FeatureSamplerAnisotropy}))
	assert.Equal(t, []string{"VK_EXT_descriptor_indexing"},
		featureDeviceExtensions([]Feature{FeatureSamplerAnisotropy, FeatureRuntimeDescriptorArray}))
}

func TestMatchQueueFamiliesPrefersSharedFamily(t *testing.T) {
	graphics, present, err := MatchQueueFamilies([]QueueCapability{
		{Graphics: true, Present: false},
		{Graphics: false, Present: true},
		{Graphics: true, Present: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, graphics)
	assert.Equal(t, 2, present)
}

func TestMatchQueueFamiliesSplitsWhenNecessary(t *testing.T) {
	graphics, present, err := MatchQueueFamilies([]QueueCapability{
		{Graphics: true, Present: false},
		{Graphics: false, Present: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, graphics)
	assert.Equal(t, 1, present)
}

func TestMatchQueueFamiliesFailsWithoutGraphicsOrPresent(t *testing.T) {
	_, _, err := MatchQueueFamilies([]QueueCapability{
		{Graphics: false, Present: true},
	})
	assert.Error(t, err)

	_, _, err = MatchQueueFamilies([]QueueCapability{
		{Graphics: true, Present: false},
	})
	assert.Error(t, err)

	_, _, err = MatchQueueFamilies(nil)
	assert.Error(t, err)
}

func TestFirstQualifyingDeviceWins(t *testing.T) {
	integrated := &PhysicalDevice{DeviceName: "integrated"}
	discrete := &PhysicalDevice{DeviceName: "discrete"}

	// Both qualify; enumeration order decides, with no ranking between them.
	sel, err := selectFirstFit([]*PhysicalDevice{integrated, discrete},
		func(pd *PhysicalDevice) (*DeviceSelection, string) {
			return &DeviceSelection{PhysicalDevice: pd}, ""
		})
	require.NoError(t, err)
	assert.Same(t, integrated, sel.PhysicalDevice)
}

func TestSelectionSkipsUnsuitableDevices(t *testing.T) {
	a := &PhysicalDevice{DeviceName: "a"}
	b := &PhysicalDevice{DeviceName: "b"}

	sel, err := selectFirstFit([]*PhysicalDevice{a, b},
		func(pd *PhysicalDevice) (*DeviceSelection, string) {
			if pd == a {
				return nil, "missing extensions [VK_KHR_swapchain]"
			}
			return &DeviceSelection{PhysicalDevice: pd}, ""
		})
	require.NoError(t, err)
	assert.Same(t, b, sel.PhysicalDevice)
}

func TestSelectionReportsEveryRejection(t *testing.T) {
	a := &PhysicalDevice{DeviceName: "a"}
	b := &PhysicalDevice{DeviceName: "b"}

	_, err := selectFirstFit([]*PhysicalDevice{a, b},
		func(pd *PhysicalDevice) (*DeviceSelection, string) {
			return nil, "no presenting queue family"
		})
	require.Error(t, err)

	var selErr *CapabilitySelectionError
	require.ErrorAs(t, err, &selErr)
	assert.Contains(t, selErr.Reason, "a: no presenting queue family")
	assert.Contains(t, selErr.Reason, "b: no presenting queue family")
}

func TestCapabilitySelectionErrorMessage(t *testing.T) {
	err := &CapabilitySelectionError{Reason: "gpu0: missing features [geometry shader]"}
	assert.Contains(t, err.Error(), "geometry shader")

	var selErr *CapabilitySelectionError
	assert.ErrorAs(t, error(err), &selErr)
}
