package vkr

import (
	"fmt"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// Feature names a device capability an application may require at selection
// time. Features that Vulkan 1.0 exposes through the core feature struct are
// checked against it; features that only exist as extensions are translated
// into a device extension requirement.
type Feature int

const (
	FeatureSamplerAnisotropy Feature = iota
	FeatureGeometryShader
	FeatureTessellationShader
	FeatureFillModeNonSolid
	FeatureWideLines
	FeatureRuntimeDescriptorArray
)

func (f Feature) String() string {
	switch f {
	case FeatureSamplerAnisotropy:
		return "sampler anisotropy"
	case FeatureGeometryShader:
		return "geometry shader"
	case FeatureTessellationShader:
		return "tessellation shader"
	case FeatureFillModeNonSolid:
		return "fill mode non-solid"
	case FeatureWideLines:
		return "wide lines"
	case FeatureRuntimeDescriptorArray:
		return "runtime descriptor array"
	}
	return "unknown feature"
}

// featureExtension maps features that have no core-feature bit onto the
// device extension that provides them.
func featureExtension(f Feature) (string, bool) {
	switch f {
	case FeatureRuntimeDescriptorArray:
		return "VK_EXT_descriptor_indexing", true
	}
	return "", false
}

// featureSupported reports whether the core feature struct satisfies f.
// Extension-backed features always return false here; they are resolved
// through the extension list instead.
func featureSupported(feats vk.PhysicalDeviceFeatures, f Feature) bool {
	switch f {
	case FeatureSamplerAnisotropy:
		return feats.SamplerAnisotropy == vk.True
	case FeatureGeometryShader:
		return feats.GeometryShader == vk.True
	case FeatureTessellationShader:
		return feats.TessellationShader == vk.True
	case FeatureFillModeNonSolid:
		return feats.FillModeNonSolid == vk.True
	case FeatureWideLines:
		return feats.WideLines == vk.True
	}
	return false
}

// MissingFeatures returns the required features a device cannot provide,
// given its core feature struct and its supported extension names.
func MissingFeatures(feats vk.PhysicalDeviceFeatures, supportedExtensions []string, required []Feature) []Feature {
	missing := make([]Feature, 0)
	for _, f := range required {
		if ext, ok := featureExtension(f); ok {
			if len(MissingExtensions(supportedExtensions, []string{ext})) != 0 {
				missing = append(missing, f)
			}
			continue
		}
		if !featureSupported(feats, f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// MissingExtensions returns the required extension names absent from the
// supported list.
func MissingExtensions(supported []string, required []string) []string {
	missing := make([]string, 0)
	for _, want := range required {
		found := false
		for _, have := range supported {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	return missing
}

// FeaturesToEnable builds the core feature struct to pass at device creation
// so that only the requested features are switched on.
func FeaturesToEnable(required []Feature) vk.PhysicalDeviceFeatures {
	var feats vk.PhysicalDeviceFeatures
	for _, f := range required {
		switch f {
		case FeatureSamplerAnisotropy:
			feats.SamplerAnisotropy = vk.True
		case FeatureGeometryShader:
			feats.GeometryShader = vk.True
		case FeatureTessellationShader:
			feats.TessellationShader = vk.True
		case FeatureFillModeNonSolid:
			feats.FillModeNonSolid = vk.True
		case FeatureWideLines:
			feats.WideLines = vk.True
		}
	}
	return feats
}

// featureDeviceExtensions returns extra device extensions implied by the
// required features.
func featureDeviceExtensions(required []Feature) []string {
	exts := make([]string, 0)
	for _, f := range required {
		if ext, ok := featureExtension(f); ok {
			exts = append(exts, ext)
		}
	}
	return exts
}

// QueueCapability is the selection-relevant view of one queue family.
type QueueCapability struct {
	Graphics bool
	Present  bool
}

// MatchQueueFamilies picks the graphics and present family indices for a
// device. A family serving both is preferred so that rendering and
// presentation share a queue; otherwise the first graphics family is paired
// with the first presenting family.
func MatchQueueFamilies(caps []QueueCapability) (graphics int, present int, err error) {
	graphics, present = -1, -1
	for i, c := range caps {
		if c.Graphics && c.Present {
			return i, i, nil
		}
		if c.Graphics && graphics < 0 {
			graphics = i
		}
		if c.Present && present < 0 {
			present = i
		}
	}
	if graphics < 0 {
		return 0, 0, fmt.Errorf("no graphics queue family")
	}
	if present < 0 {
		return 0, 0, fmt.Errorf("no presenting queue family")
	}
	return graphics, present, nil
}

// DeviceRequirements states what a physical device must provide to be
// selected.
type DeviceRequirements struct {
	// Extensions the device must support, e.g. VK_KHR_swapchain.
	Extensions []string
	// Features the device must support.
	Features []Feature
}

// DeviceSelection is the outcome of physical-device selection: the chosen
// device and the queue families to build the logical device with. The two
// families are equal when one family serves both roles.
type DeviceSelection struct {
	PhysicalDevice *PhysicalDevice
	GraphicsFamily *QueueFamily
	PresentFamily  *QueueFamily
	Requirements   DeviceRequirements
}

// SharedQueue reports whether graphics and present map onto one family.
func (s *DeviceSelection) SharedQueue() bool {
	return s.GraphicsFamily.Index == s.PresentFamily.Index
}

// SelectPhysicalDevice walks the instance's physical devices in enumeration
// order and returns the first that satisfies the requirements and can present
// to the surface. Qualifying devices are not ranked against each other. It
// fails with a CapabilitySelectionError naming what each candidate was
// missing.
func SelectPhysicalDevice(instance *Instance, surface vk.Surface, req DeviceRequirements) (*DeviceSelection, error) {
	pdevices, err := instance.PhysicalDevices()
	if err != nil {
		return nil, err
	}
	if len(pdevices) == 0 {
		return nil, &CapabilitySelectionError{Reason: "no physical devices found"}
	}

	return selectFirstFit(pdevices, func(pd *PhysicalDevice) (*DeviceSelection, string) {
		return evaluateDevice(pd, surface, req)
	})
}

// selectFirstFit returns the evaluation of the first device the evaluator
// accepts, collecting the per-device rejection reasons otherwise.
func selectFirstFit(pdevices []*PhysicalDevice, evaluate func(*PhysicalDevice) (*DeviceSelection, string)) (*DeviceSelection, error) {
	reasons := make([]string, 0)
	for _, pd := range pdevices {
		sel, reason := evaluate(pd)
		if sel != nil {
			return sel, nil
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", pd.DeviceName, reason))
	}
	return nil, &CapabilitySelectionError{Reason: strings.Join(reasons, "; ")}
}

func evaluateDevice(pd *PhysicalDevice, surface vk.Surface, req DeviceRequirements) (*DeviceSelection, string) {
	supportedExt, err := pd.SupportedExtensions()
	if err != nil {
		return nil, fmt.Sprintf("enumerating extensions: %v", err)
	}

	wantExt := append(append([]string{}, req.Extensions...), featureDeviceExtensions(req.Features)...)
	if missing := MissingExtensions(supportedExt, wantExt); len(missing) != 0 {
		return nil, fmt.Sprintf("missing extensions %v", missing)
	}

	feats := pd.VKPhysicalDeviceFeatures()
	if missing := MissingFeatures(feats, supportedExt, req.Features); len(missing) != 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = f.String()
		}
		return nil, fmt.Sprintf("missing features %v", names)
	}

	families, err := pd.QueueFamilies()
	if err != nil {
		return nil, fmt.Sprintf("enumerating queue families: %v", err)
	}
	caps := make([]QueueCapability, len(families))
	for i, qf := range families {
		caps[i] = QueueCapability{Graphics: qf.IsGraphics(), Present: qf.SupportsPresent(surface)}
	}
	graphics, present, err := MatchQueueFamilies(caps)
	if err != nil {
		return nil, err.Error()
	}

	formats, err := pd.GetSurfaceFormats(surface)
	if err != nil || len(formats) == 0 {
		return nil, "no surface formats"
	}
	modes, err := pd.GetSurfacePresentModes(surface)
	if err != nil || len(modes) == 0 {
		return nil, "no present modes"
	}

	return &DeviceSelection{
		PhysicalDevice: pd,
		GraphicsFamily: families[graphics],
		PresentFamily:  families[present],
		Requirements:   req,
	}, ""
}

// CreateDevice builds the logical device from a selection, enabling exactly
// the requested features and extensions and retrieving the two queues.
func (s *DeviceSelection) CreateDevice() (*Device, error) {
	enabled := FeaturesToEnable(s.Requirements.Features)
	exts := append(append([]string{}, s.Requirements.Extensions...), featureDeviceExtensions(s.Requirements.Features)...)

	device, err := s.PhysicalDevice.CreateLogicalDeviceWithOptions(
		QueueFamilySlice{s.GraphicsFamily, s.PresentFamily},
		&CreateDeviceOptions{
			EnabledExtensions: exts,
			EnabledFeatures:   &enabled,
		})
	if err != nil {
		return nil, err
	}

	device.GraphicsQueue = device.GetQueue(s.GraphicsFamily)
	device.PresentQueue = device.GetQueue(s.PresentFamily)
	return device, nil
}
