package sessionapi

import "github.com/ferama/rexpect/pkg/expect"

type responseItem struct {
	ID int `json:"Id"`
	expect.Stats
}
