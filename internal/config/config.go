package config

type Config struct {
	Elasticsearch struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Address  string `json:"address"`
	} `json:"elasticsearch"`

	Rod struct {
		UserDataDir          string `json:"user_data_dir"`
		Headless             bool   `json:"headless"`
		DisableBlinkFeatures string `json:"disable_blink_features"`
		Incognito            bool   `json:"incognito"`
		DisableDevShmUsage   bool   `json:"disable_dev_shm_usage"`
		NoSandbox            bool   `json:"no_sandbox"`
		UserAgent            string `json:"user_agent"`
		Leakless             bool   `json:"leakless"`
		Bin                  string `json:"bin"`
	} `json:"rod"`

	Chromedp struct {
		LifeTime             int    `json:"life_time"`
		UserDataDir          string `json:"user_data_dir"`
		Headless             bool   `json:"headless"`
		DisableBlinkFeatures string `json:"disable_blink_features"`
		Incognito            bool   `json:"incognito"`
		DisableDevShmUsage   bool   `json:"disable_dev_shm_usage"`
		NoSandbox            bool   `json:"no_sandbox"`
		UserAgent            string `json:"user_agent"`
	} `json:"chromedp"`

	Scrape struct {
		NavigationTimeoutSeconds int `json:"navigation_timeout_seconds"`
		NavigationRetries        int `json:"navigation_retries"`
		ScrollTimes              int `json:"scroll_times"`
		StandardSleepSeconds     int `json:"standard_sleep_seconds"`
		RandomDelaySeconds       int `json:"random_delay_seconds"`
	} `json:"scrape"`

	Embedder struct {
		Host      string `json:"host"`
		Port      int    `json:"port"`
		Model     string `json:"model"`
		BatchSize int    `json:"batch_size"`
	} `json:"embedder"`
}
