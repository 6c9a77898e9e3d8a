package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
)

// splitDisplayName splits "Ana Maria Lee" into ("Ana", "Maria Lee").
func splitDisplayName(displayName string) (first, last string) {
	parts := strings.Fields(displayName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// namesFromEmail derives names from the local part: "ana.maria.lee@x.com"
// gives ("ana", "maria lee").
func namesFromEmail(email string) (first, last string) {
	local := localPart(email)
	if local == "" {
		return "", ""
	}
	segments := strings.Split(local, ".")
	return segments[0], strings.Join(segments[1:], " ")
}

// baseUsername is the email local part, or user_<unix millis> without one.
func baseUsername(email string) string {
	if local := localPart(email); local != "" {
		return local
	}
	return "user_" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func withSuffix(username string) string {
	return username + "_" + xid.New().String()
}

func localPart(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}
