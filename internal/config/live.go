package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Live keeps the latest Config and re-reads it when the config file changes.
// Only settings that are read per use (such as AutoRestart) pick up changes;
// clients built from the first Config keep their values.
type Live struct {
	v *viper.Viper

	mu  sync.RWMutex
	cfg Config
}

// NewLive loads the initial Config from v.
func NewLive(v *viper.Viper) (*Live, error) {
	cfg, err := FromViper(v)
	if err != nil {
		return nil, err
	}
	return &Live{v: v, cfg: cfg}, nil
}

// Current returns the most recently loaded Config.
func (l *Live) Current() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// AutoRestart reports whether the restart feature is currently enabled.
func (l *Live) AutoRestart() bool {
	return l.Current().AutoRestart
}

// Watch starts watching the config file. It does nothing when no file was
// found. An invalid edit is logged and the previous Config stays in effect.
func (l *Live) Watch() {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.reload(e.Name)
	})
	l.v.WatchConfig()
	log.Debugf("watching %s for changes", l.v.ConfigFileUsed())
}

func (l *Live) reload(name string) {
	cfg, err := FromViper(l.v)
	if err != nil {
		log.Errorf("config file %s changed but is invalid, keeping previous settings: %v", name, err)
		return
	}
	l.mu.Lock()
	prev := l.cfg.AutoRestart
	l.cfg = cfg
	l.mu.Unlock()
	if prev != cfg.AutoRestart {
		log.Infof("UPDATE_AUTO_RESTART changed to %t", cfg.AutoRestart)
	}
}
