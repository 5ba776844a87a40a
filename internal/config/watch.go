package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"audioai/pkg/log"
)

const reloadDebounce = 500 * time.Millisecond

// Manager 持有当前生效的配置，配置文件变更后自动重载
type Manager struct {
	path string
	log  *log.Logger

	lock sync.RWMutex
	cfg  *Config
}

func NewManager(path string, logger *log.Logger) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Manager{path: path, log: logger, cfg: cfg}, nil
}

// NewStaticManager 不读文件也不监听，测试和命令行使用
func NewStaticManager(cfg *Config) *Manager {
	return &Manager{cfg: cfg, log: log.Nop()}
}

// Get 返回当前配置快照，调用方不应修改
func (m *Manager) Get() *Config {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.cfg
}

// Reload 重新加载配置，失败时保留旧配置
func (m *Manager) Reload() error {
	cfg, err := Load(m.path)
	if err != nil {
		return err
	}
	m.lock.Lock()
	m.cfg = cfg
	m.lock.Unlock()
	return nil
}

// Watch 监听配置文件变更直到 ctx 结束
func (m *Manager) Watch(ctx context.Context) error {
	if m.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err = watcher.Add(m.path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", m.path, err)
	}

	go func() {
		defer func() {
			_ = watcher.Close()
		}()
		m.log.Infof("watching config file: %s", m.path)

		debounceTimer := time.NewTimer(0)
		<-debounceTimer.C

		for {
			select {
			case <-ctx.Done():
				debounceTimer.Stop()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					debounceTimer.Reset(reloadDebounce)
				}
				// 编辑器保存时可能先删除再重建，需要重新挂载监听
				if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					_ = watcher.Add(m.path)
				}
			case <-debounceTimer.C:
				if err := m.Reload(); err != nil {
					m.log.Errorf("config reload failed, keep previous: %v", err)
					continue
				}
				m.log.Info("config reloaded")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.log.Warnf("config watcher error: %v", err)
			}
		}
	}()
	return nil
}
