package rootapi

// Info holds the engine defaults and the process wide details
type Info struct {
	Version     string `json:"Version"`
	Timeout     string `json:"Timeout"`
	MatchMax    int    `json:"MatchMax"`
	RemoveNulls bool   `json:"RemoveNulls"`
	FullBuffer  bool   `json:"FullBuffer"`
	Scripts     int    `json:"Scripts"`
	SshClient   string `json:"SshClient,omitempty"`
}

type statsResponse struct {
	CountSessions       int   `json:"CountSessions"`
	CountClosedSessions int   `json:"CountClosedSessions"`
	BytesRead           int64 `json:"BytesRead"`
	Matches             int64 `json:"Matches"`

	// runtime stats
	NumGoroutine int    `json:"NumGoroutine"`
	MemTotal     uint64 `json:"MemTotal"`
}
