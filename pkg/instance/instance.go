package instance

import (
	"os"
	"strings"
)

// GetID returns the process instance identifier used in logs and as the
// cron lock owner prefix. TRUSTFLOW_INSTANCE_ID wins, then the platform's
// DYNO name, then "local".
func GetID() string {
	for _, key := range []string{"TRUSTFLOW_INSTANCE_ID", "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	return "local"
}
