package voice

import (
	"math/rand"
	"time"

	"tingshu-go/internal/domain/segment"
)

// RunContext 单次转换运行的可变状态：角色性别缓存和音色分配表。
// 两张表只在一次运行内有效，运行结束即丢弃，不做跨运行持久化。
// 随机源可注入，测试用固定种子即可重现完整的分配序列。
type RunContext struct {
	genders     map[string]segment.Gender
	assignments map[string]string
	rng         *rand.Rand
}

// NewRunContext 创建运行上下文，随机源按当前时间播种
func NewRunContext() *RunContext {
	return NewRunContextWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewRunContextWithRand 创建运行上下文并注入随机源
func NewRunContextWithRand(rng *rand.Rand) *RunContext {
	return &RunContext{
		genders:     make(map[string]segment.Gender),
		assignments: make(map[string]string),
		rng:         rng,
	}
}

// Gender 读取角色性别缓存
func (rc *RunContext) Gender(name string) (segment.Gender, bool) {
	g, ok := rc.genders[name]
	return g, ok
}

// SetGender 写入角色性别缓存
func (rc *RunContext) SetGender(name string, g segment.Gender) {
	rc.genders[name] = g
}

// Assignment 读取角色已分配的音色
func (rc *RunContext) Assignment(name string) (string, bool) {
	v, ok := rc.assignments[name]
	return v, ok
}

// SetAssignment 记录角色的音色分配，此后同名角色始终解析到同一音色
func (rc *RunContext) SetAssignment(name, voice string) {
	rc.assignments[name] = voice
}

// assignedVoiceSet 已分配给角色的音色集合，用于随机分配时的去重收窄
func (rc *RunContext) assignedVoiceSet() map[string]bool {
	set := make(map[string]bool, len(rc.assignments))
	for _, v := range rc.assignments {
		set[v] = true
	}
	return set
}
