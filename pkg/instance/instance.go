package instance

import (
	"os"

	"github.com/webyarden/webyarden-backend/pkg/env"
)

// ID names this process in logs: WEBYARDEN_INSTANCE_ID, else the hostname.
func ID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "webyarden-0"
	}
	return env.Get("WEBYARDEN_INSTANCE_ID", host)
}
