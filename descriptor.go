package vkr

import (
	vk "github.com/vulkan-go/vulkan"
)

type DescriptorSetLayout struct {
	Device                *Device
	VKDescriptorSetLayout vk.DescriptorSetLayout
}

func (l *DescriptorSetLayout) Destroy() {
	vk.DestroyDescriptorSetLayout(l.Device.VKDevice, l.VKDescriptorSetLayout, nil)
}

func (d *Device) CreateDescriptorSetLayout(bindings []vk.DescriptorSetLayoutBinding) (*DescriptorSetLayout, error) {
	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	err := deviceResult("create descriptor set layout", vk.CreateDescriptorSetLayout(d.VKDevice, &createInfo, nil, &layout))
	if err != nil {
		return nil, err
	}

	var ret DescriptorSetLayout
	ret.Device = d
	ret.VKDescriptorSetLayout = layout
	return &ret, nil
}

type DescriptorPool struct {
	Device           *Device
	VKDescriptorPool vk.DescriptorPool
}

func (p *DescriptorPool) Destroy() {
	vk.DestroyDescriptorPool(p.Device.VKDevice, p.VKDescriptorPool, nil)
}

func (d *Device) CreateDescriptorPool(maxSets int, sizes []vk.DescriptorPoolSize) (*DescriptorPool, error) {
	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(maxSets),
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}

	var pool vk.DescriptorPool
	err := deviceResult("create descriptor pool", vk.CreateDescriptorPool(d.VKDevice, &createInfo, nil, &pool))
	if err != nil {
		return nil, err
	}

	var ret DescriptorPool
	ret.Device = d
	ret.VKDescriptorPool = pool
	return &ret, nil
}

type DescriptorSet struct {
	VKDescriptorSet vk.DescriptorSet
}

// AllocateSets allocates one descriptor set per layout. Sets are returned to
// the device when the pool is destroyed.
func (p *DescriptorPool) AllocateSets(layouts ...*DescriptorSetLayout) ([]*DescriptorSet, error) {
	l := make([]vk.DescriptorSetLayout, len(layouts))
	for i := range layouts {
		l[i] = layouts[i].VKDescriptorSetLayout
	}

	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.VKDescriptorPool,
		DescriptorSetCount: uint32(len(l)),
		PSetLayouts:        l,
	}

	sets := make([]vk.DescriptorSet, len(l))
	err := deviceResult("allocate descriptor sets", vk.AllocateDescriptorSets(p.Device.VKDevice, &allocateInfo, &sets[0]))
	if err != nil {
		return nil, err
	}

	ret := make([]*DescriptorSet, len(sets))
	for i := range sets {
		ret[i] = &DescriptorSet{VKDescriptorSet: sets[i]}
	}
	return ret, nil
}

type PipelineLayout struct {
	Device           *Device
	VKPipelineLayout vk.PipelineLayout
}

func (l *PipelineLayout) Destroy() {
	vk.DestroyPipelineLayout(l.Device.VKDevice, l.VKPipelineLayout, nil)
}

func (d *Device) CreatePipelineLayout(layouts ...*DescriptorSetLayout) (*PipelineLayout, error) {
	l := make([]vk.DescriptorSetLayout, len(layouts))
	for i := range layouts {
		l[i] = layouts[i].VKDescriptorSetLayout
	}

	createInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(l)),
		PSetLayouts:    l,
	}

	var layout vk.PipelineLayout
	err := deviceResult("create pipeline layout", vk.CreatePipelineLayout(d.VKDevice, &createInfo, nil, &layout))
	if err != nil {
		return nil, err
	}

	var ret PipelineLayout
	ret.Device = d
	ret.VKPipelineLayout = layout
	return &ret, nil
}

// CmdBindDescriptorSets binds descriptor sets for subsequent draw or
// dispatch commands.
func (c *CommandBuffer) CmdBindDescriptorSets(bindPoint vk.PipelineBindPoint, layout *PipelineLayout, firstSet int, descriptorSets ...*DescriptorSet) {

	sets := make([]vk.DescriptorSet, len(descriptorSets))
	for i := range descriptorSets {
		sets[i] = descriptorSets[i].VKDescriptorSet
	}

	vk.CmdBindDescriptorSets(c.VKCommandBuffer, bindPoint,
		layout.VKPipelineLayout, uint32(firstSet), uint32(len(descriptorSets)), sets, 0, nil)

}
