package config

import "github.com/NattKh/Expedition33ModManager/internal/installer"

func Sample() Config {
	return Config{
		LoaderURL:          installer.DefaultLoaderURL,
		TargetDir:          `C:\Program Files (x86)\Steam\steamapps\common\Expedition 33\Sandfall\Binaries\Win64`,
		CachePath:          defaultCachePath,
		HTTPTimeoutSeconds: 0,
		UserAgent:          defaultUserAgent,
		LogLevel:           "info",
	}
}
