package model

import (
	"fmt"
	"strings"
)

type Status uint8

const (
	StatusPending Status = iota
	StatusInProgress
	StatusCompleted
)

var statusNames = [...]string{
	StatusPending:    "Pending",
	StatusInProgress: "InProgress",
	StatusCompleted:  "Completed",
}

// Старые названия статусов тоже принимаются
var statusAliases = map[string]Status{
	"pending":     StatusPending,
	"inprogress":  StatusInProgress,
	"completed":   StatusCompleted,
	"pendente":    StatusPending,
	"emandamento": StatusInProgress,
	"concluida":   StatusCompleted,
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", s)
}

func (s Status) Valid() bool {
	return int(s) < len(statusNames)
}

// ParseStatus без учета регистра
func ParseStatus(v string) (Status, bool) {
	s, ok := statusAliases[strings.ToLower(strings.TrimSpace(v))]
	return s, ok
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", s)
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, ok := ParseStatus(string(b))
	if !ok {
		return fmt.Errorf("unknown status %q", b)
	}
	*s = parsed
	return nil
}
