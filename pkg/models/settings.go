package models

// Settings represents the proxy client configuration
type Settings struct {
	LocalPort   int         `yaml:"localPort" json:"localPort" mapstructure:"localPort"`
	PacPort     int         `yaml:"pacPort" json:"pacPort" mapstructure:"pacPort"`
	GfwListURL  string      `yaml:"gfwListUrl" json:"gfwListUrl" mapstructure:"gfwListUrl"`
	HTTPProxy   HTTPProxy   `yaml:"httpProxy" json:"httpProxy" mapstructure:"httpProxy"`
	LoadBalance LoadBalance `yaml:"loadBalance" json:"loadBalance" mapstructure:"loadBalance"`
	ACL         ACL         `yaml:"acl" json:"acl" mapstructure:"acl"`
	AutoLaunch  bool        `yaml:"autoLaunch" json:"autoLaunch" mapstructure:"autoLaunch"`
	FixedMenu   bool        `yaml:"fixedMenu" json:"fixedMenu" mapstructure:"fixedMenu"`
	DarkMode    bool        `yaml:"darkMode" json:"darkMode" mapstructure:"darkMode"`
	AutoTheme   bool        `yaml:"autoTheme" json:"autoTheme" mapstructure:"autoTheme"`
	Verbose     bool        `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
	AutoHide    bool        `yaml:"autoHide" json:"autoHide" mapstructure:"autoHide"`
	Lang        string      `yaml:"lang" json:"lang" mapstructure:"lang"`
}

// HTTPProxy controls the secondary HTTP proxy listener
type HTTPProxy struct {
	Enable bool `yaml:"enable" json:"enable" mapstructure:"enable"`
	Port   int  `yaml:"port" json:"port" mapstructure:"port"`
}

// ACL points at the access control rule set used by the local server
type ACL struct {
	Enable bool   `yaml:"enable" json:"enable" mapstructure:"enable"`
	URL    string `yaml:"url" json:"url" mapstructure:"url"`
}

// Strategy is a load balancing algorithm
type Strategy string

const (
	StrategyPolling           Strategy = "POLLING"
	StrategyRandom            Strategy = "RANDOM"
	StrategyWeights           Strategy = "WEIGHTS"
	StrategyMinimumConnection Strategy = "MINIMUM_CONNECTION"
)

// Strategies lists every supported load balancing strategy
var Strategies = []Strategy{
	StrategyPolling,
	StrategyRandom,
	StrategyWeights,
	StrategyMinimumConnection,
}

// Valid reports whether s is a known strategy
func (s Strategy) Valid() bool {
	for _, known := range Strategies {
		if s == known {
			return true
		}
	}
	return false
}

// LoadBalance controls spreading connections across several servers
type LoadBalance struct {
	Strategy Strategy `yaml:"strategy" json:"strategy" mapstructure:"strategy"`
	Count    int      `yaml:"count" json:"count" mapstructure:"count"`
	Enable   bool     `yaml:"enable" json:"enable" mapstructure:"enable"`
}

// PartialLoadBalance is a load balance record whose sub-fields may be absent
type PartialLoadBalance struct {
	Strategy *Strategy `mapstructure:"strategy"`
	Count    *int      `mapstructure:"count"`
	Enable   *bool     `mapstructure:"enable"`
}

const (
	DefaultLoadBalanceStrategy = StrategyPolling
	DefaultLoadBalanceCount    = 3
)

// Resolve backfills every absent sub-field with its default
func (p PartialLoadBalance) Resolve() LoadBalance {
	lb := LoadBalance{
		Strategy: DefaultLoadBalanceStrategy,
		Count:    DefaultLoadBalanceCount,
	}
	if p.Strategy != nil && *p.Strategy != "" {
		lb.Strategy = *p.Strategy
	}
	if p.Count != nil && *p.Count != 0 {
		lb.Count = *p.Count
	}
	if p.Enable != nil {
		lb.Enable = *p.Enable
	}
	return lb
}

// NormalizeLoadBalance replaces zero-valued sub-fields with defaults.
// A zero strategy or count is treated as absent.
func NormalizeLoadBalance(lb LoadBalance) LoadBalance {
	if lb.Strategy == "" {
		lb.Strategy = DefaultLoadBalanceStrategy
	}
	if lb.Count == 0 {
		lb.Count = DefaultLoadBalanceCount
	}
	return lb
}

// Clone returns a copy of the settings
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// DefaultSettings returns the default configuration
func DefaultSettings() *Settings {
	return &Settings{
		LocalPort:  1080,
		PacPort:    1090,
		GfwListURL: "https://raw.githubusercontent.com/gfwlist/gfwlist/master/gfwlist.txt",
		HTTPProxy: HTTPProxy{
			Enable: false,
			Port:   1095,
		},
		LoadBalance: LoadBalance{
			Strategy: DefaultLoadBalanceStrategy,
			Count:    DefaultLoadBalanceCount,
			Enable:   false,
		},
		ACL: ACL{
			Enable: false,
			URL:    "",
		},
		AutoLaunch: false,
		FixedMenu:  false,
		DarkMode:   false,
		AutoTheme:  false,
		Verbose:    false,
		AutoHide:   false,
		Lang:       "en-US",
	}
}
