package eventbus

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

var (
	instance evbus.Bus
	once     sync.Once
)

// Get 获取全局事件总线实例
func Get() evbus.Bus {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New 创建新的事件总线
func New() evbus.Bus {
	return evbus.New()
}

// Publish 发布事件。同步分发，订阅者在发布方的goroutine里执行，
// 因此进度类事件保持与流水线一致的顺序。
func Publish(topic string, args ...interface{}) {
	Get().Publish(topic, args...)
}

// Subscribe 订阅事件
func Subscribe(topic string, fn interface{}) error {
	return Get().Subscribe(topic, fn)
}

// Unsubscribe 取消订阅
func Unsubscribe(topic string, fn interface{}) error {
	return Get().Unsubscribe(topic, fn)
}
