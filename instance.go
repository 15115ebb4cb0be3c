package vkr

import (
	"fmt"
	"log"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Version is used to specify versions of components
type Version struct {
	Major int
	Minor int
	Patch int
}

// VKVersion returns a Vulkan compatible version representation
func (v *Version) VKVersion() uint32 {
	return vk.MakeVersion(v.Major, v.Minor, v.Patch)
}

// App is used to provide information about this specific application to Vulkan
type App struct {
	// Name the name of the application
	Name string
	// EngineName the name of the engine associated with the application
	EngineName string
	// Version the version of the application
	Version Version
	// EngineVersion the version of the engine
	EngineVersion Version
	// APIVersion the expected minimum version of the Vulkan API (i.e. 1.0.0)
	APIVersion Version

	// EnabledLayers the enabled layers
	EnabledLayers []string

	// EnabledExtensions the enabled extensions
	EnabledExtensions []string
}

// SupportedLayers returns a list of layers supported by the Vulkan runtime.
// Vulkan must have been initialized before calling this.
func SupportedLayers() ([]string, error) {
	var instanceLayerLen uint32
	err := vk.Error(vk.EnumerateInstanceLayerProperties(&instanceLayerLen, nil))
	if err != nil {
		return nil, err
	}
	instanceLayer := make([]vk.LayerProperties, instanceLayerLen)
	err = vk.Error(vk.EnumerateInstanceLayerProperties(&instanceLayerLen, instanceLayer))
	if err != nil {
		return nil, err
	}
	layerNames := make([]string, 0)
	for _, layer := range instanceLayer {
		layer.Deref()
		layerNames = append(layerNames, vk.ToString(layer.LayerName[:]))
	}
	return layerNames, nil
}

// SupportedExtensions returns a list of instance extensions supported by the
// Vulkan runtime.
func SupportedExtensions() ([]string, error) {
	var instanceExtLen uint32
	err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &instanceExtLen, nil))
	if err != nil {
		return nil, err
	}
	instanceExt := make([]vk.ExtensionProperties, instanceExtLen)
	err = vk.Error(vk.EnumerateInstanceExtensionProperties("", &instanceExtLen, instanceExt))
	if err != nil {
		return nil, err
	}
	extNames := make([]string, 0)
	for _, ext := range instanceExt {
		ext.Deref()
		extNames = append(extNames, vk.ToString(ext.ExtensionName[:]))
	}
	return extNames, nil
}

// EnableValidation turns on the Khronos validation layer and the debug
// reporting extension so that validation messages can be routed through a
// DebugFunc.
func (a *App) EnableValidation() error {
	if _, err := a.EnableLayer("VK_LAYER_KHRONOS_validation"); err != nil {
		return err
	}
	a.EnableExtension("VK_EXT_debug_report")
	return nil
}

// EnableLayer enables a specific layer, failing if the runtime does not
// support it.
func (a *App) EnableLayer(layer string) (*App, error) {
	if a.EnabledLayers == nil {
		a.EnabledLayers = make([]string, 0)
	}
	layers, err := SupportedLayers()
	if err != nil {
		return a, fmt.Errorf("error getting supported layers: %w", err)
	}
	for _, l := range layers {
		if l == layer {
			a.EnabledLayers = append(a.EnabledLayers, layer)
			return a, nil
		}
	}
	return a, fmt.Errorf("validation layer '%s' not found", layer)
}

// EnableExtension enables an instance extension for use by the application
func (a *App) EnableExtension(extension string) *App {
	if a.EnabledExtensions == nil {
		a.EnabledExtensions = make([]string, 0)
	}
	a.EnabledExtensions = append(a.EnabledExtensions, extension)
	return a
}

// VKApplicationInfo creates a structure representing this application in a
// Vulkan friendly format
func (a *App) VKApplicationInfo() vk.ApplicationInfo {

	if a.APIVersion.Major < 1 {
		a.APIVersion.Major = 1
	}

	var appInfo = vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         a.APIVersion.VKVersion(),
		ApplicationVersion: a.Version.VKVersion(),
		EngineVersion:      a.EngineVersion.VKVersion(),
		PApplicationName:   safeString(a.Name),
		PEngineName:        safeString(a.EngineName),
	}
	return appInfo
}

// CreateInstance creates the Vulkan Instance
func (a *App) CreateInstance() (*Instance, error) {
	appInfo := a.VKApplicationInfo()

	extensions := safeStrings(a.EnabledExtensions)
	layers := safeStrings(a.EnabledLayers)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	instance := &Instance{}

	err := vk.Error(vk.CreateInstance(&createInfo, nil, &instance.VKInstance))
	if err != nil {
		return nil, err
	}
	vk.InitInstance(instance.VKInstance)

	return instance, nil
}

// PhysicalDevices returns a list of physical devices known to Vulkan
func (i *Instance) PhysicalDevices() ([]*PhysicalDevice, error) {
	var deviceCount uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &deviceCount, nil))
	if err != nil {
		return nil, err
	}

	if deviceCount == 0 {
		return nil, nil
	}

	devices := make([]vk.PhysicalDevice, deviceCount)
	err = vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &deviceCount, devices))
	if err != nil {
		return nil, err
	}

	ret := make([]*PhysicalDevice, deviceCount)
	for i, device := range devices {
		ret[i] = &PhysicalDevice{}
		ret[i].VKPhysicalDevice = device

		vk.GetPhysicalDeviceProperties(device, &ret[i].VKPhysicalDeviceProperties)

		ret[i].VKPhysicalDeviceProperties.Deref()
		ret[i].DeviceName = fmt.Sprintf("%s", ret[i].VKPhysicalDeviceProperties.DeviceName)
	}
	return ret, nil
}

// DebugSeverity classifies a validation message by importance.
type DebugSeverity int

const (
	SeverityVerbose DebugSeverity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s DebugSeverity) String() string {
	switch s {
	case SeverityVerbose:
		return "verbose"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// DebugCategory classifies the origin of a validation message.
type DebugCategory int

const (
	CategoryGeneral DebugCategory = iota
	CategoryValidation
	CategoryPerformance
)

func (c DebugCategory) String() string {
	switch c {
	case CategoryGeneral:
		return "general"
	case CategoryValidation:
		return "validation"
	case CategoryPerformance:
		return "performance"
	}
	return "unknown"
}

// DebugSeverityFilter selects which severities are forwarded to the DebugFunc.
type DebugSeverityFilter struct {
	Verbose bool
	Info    bool
	Warning bool
	Error   bool
}

// AllSeverities returns a filter passing every severity.
func AllSeverities() DebugSeverityFilter {
	return DebugSeverityFilter{Verbose: true, Info: true, Warning: true, Error: true}
}

func (f DebugSeverityFilter) pass(s DebugSeverity) bool {
	switch s {
	case SeverityVerbose:
		return f.Verbose
	case SeverityInfo:
		return f.Info
	case SeverityWarning:
		return f.Warning
	case SeverityError:
		return f.Error
	}
	return false
}

// DebugCategoryFilter selects which categories are forwarded to the DebugFunc.
type DebugCategoryFilter struct {
	General     bool
	Validation  bool
	Performance bool
}

// AllCategories returns a filter passing every category.
func AllCategories() DebugCategoryFilter {
	return DebugCategoryFilter{General: true, Validation: true, Performance: true}
}

func (f DebugCategoryFilter) pass(c DebugCategory) bool {
	switch c {
	case CategoryGeneral:
		return f.General
	case CategoryValidation:
		return f.Validation
	case CategoryPerformance:
		return f.Performance
	}
	return false
}

// DebugFunc receives validation messages that pass the configured filters.
// The return value never affects execution; messages are informational only.
type DebugFunc func(severity DebugSeverity, category DebugCategory, message string)

// LogDebugFunc forwards validation messages to the standard logger.
func LogDebugFunc(severity DebugSeverity, category DebugCategory, message string) {
	log.Printf("vulkan %s [%s]: %s", severity, category, message)
}

func classifyReportFlags(flags vk.DebugReportFlags) (DebugSeverity, DebugCategory) {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return SeverityError, CategoryValidation
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return SeverityWarning, CategoryPerformance
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return SeverityWarning, CategoryValidation
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return SeverityVerbose, CategoryGeneral
	default:
		return SeverityInfo, CategoryGeneral
	}
}

// SetDebugFunc installs a debug-report callback that filters messages by
// severity and category before handing them to fn. The callback is owned by
// the instance and torn down with it.
func (i *Instance) SetDebugFunc(severities DebugSeverityFilter, categories DebugCategoryFilter, fn DebugFunc) error {
	if fn == nil {
		fn = LogDebugFunc
	}
	i.debugFunc = fn
	i.debugSeverities = severities
	i.debugCategories = categories

	trampoline := func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
		object uint64, location uint, messageCode int32, pLayerPrefix string,
		pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

		severity, category := classifyReportFlags(flags)
		if i.debugSeverities.pass(severity) && i.debugCategories.pass(category) {
			i.debugFunc(severity, category, fmt.Sprintf("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage))
		}
		return vk.Bool32(vk.False)
	}

	var debugCallback vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(i.VKInstance, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit | vk.DebugReportDebugBit),
		PfnCallback: trampoline,
	}, nil, &debugCallback)
	if err := vk.Error(ret); err != nil {
		return err
	}
	i.debugCallback = debugCallback
	i.hasDebugCallback = true
	return nil
}

// Instance is an instance of the Vulkan subsystem
type Instance struct {
	// VKInstance is the native Vulkan instance object
	VKInstance vk.Instance

	debugCallback    vk.DebugReportCallback
	hasDebugCallback bool
	debugFunc        DebugFunc
	debugSeverities  DebugSeverityFilter
	debugCategories  DebugCategoryFilter
}

func (i *Instance) Destroy() {
	if i.hasDebugCallback {
		vk.DestroyDebugReportCallback(i.VKInstance, i.debugCallback, nil)
		i.hasDebugCallback = false
	}
	vk.DestroyInstance(i.VKInstance, nil)
}
