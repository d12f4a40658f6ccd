package web

// WebConf holds the web api configuration
type WebConf struct {
	ListenAddress string `yaml:"listen_address"`
}
