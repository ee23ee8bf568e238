// Package options wraps rod's launcher flags behind functional
// options so session construction stays readable.
package options

import (
	"github.com/go-rod/rod/lib/launcher"
)

type Option func(*launcher.Launcher)

// CreateLauncher builds a launcher. userMode connects to the user's
// own browser profile instead of launching a managed one.
func CreateLauncher(userMode bool, opts ...Option) *launcher.Launcher {
	var l *launcher.Launcher
	if userMode {
		l = launcher.NewUserMode()
	} else {
		l = launcher.New()
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func WithBin(bin string) Option {
	return func(l *launcher.Launcher) {
		if bin != "" {
			l.Bin(bin)
		}
	}
}

func WithUserDataDir(dir string) Option {
	return func(l *launcher.Launcher) {
		if dir != "" {
			l.UserDataDir(dir)
		}
	}
}

func WithHeadless(headless bool) Option {
	return func(l *launcher.Launcher) {
		l.Headless(headless)
	}
}

func WithDisableBlinkFeatures(features string) Option {
	return func(l *launcher.Launcher) {
		if features != "" {
			l.Set("disable-blink-features", features)
		}
	}
}

func WithIncognito(incognito bool) Option {
	return func(l *launcher.Launcher) {
		if incognito {
			l.Set("incognito")
		}
	}
}

func WithDisableDevShmUsage(disable bool) Option {
	return func(l *launcher.Launcher) {
		if disable {
			l.Set("disable-dev-shm-usage")
		}
	}
}

func WithNoSandbox(noSandbox bool) Option {
	return func(l *launcher.Launcher) {
		l.NoSandbox(noSandbox)
	}
}

func WithUserAgent(agent string) Option {
	return func(l *launcher.Launcher) {
		if agent != "" {
			l.Set("user-agent", agent)
		}
	}
}

func WithLeakless(leakless bool) Option {
	return func(l *launcher.Launcher) {
		l.Leakless(leakless)
	}
}
