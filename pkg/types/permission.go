package types

import "fmt"

type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

func ParsePermissionStatus(s string) (PermissionStatus, error) {
	switch PermissionStatus(s) {
	case PermissionGranted, PermissionDenied, PermissionUndetermined:
		return PermissionStatus(s), nil
	}
	return "", NewInvalidArgumentError(fmt.Sprintf("unknown permission status: %q", s))
}

// PermissionState is a read-only snapshot of library access per kind.
type PermissionState struct {
	statuses map[Kind]PermissionStatus
}

func NewPermissionState(statuses map[Kind]PermissionStatus) PermissionState {
	copied := make(map[Kind]PermissionStatus, len(statuses))
	for k, v := range statuses {
		copied[k] = v
	}
	return PermissionState{statuses: copied}
}

func (p PermissionState) Status(kind Kind) PermissionStatus {
	if s, ok := p.statuses[kind]; ok {
		return s
	}
	return PermissionUndetermined
}

func (p PermissionState) Granted(kind Kind) bool {
	return p.Status(kind) == PermissionGranted
}

// Map returns a copy suitable for serialization.
func (p PermissionState) Map() map[Kind]PermissionStatus {
	out := make(map[Kind]PermissionStatus, 2)
	for _, k := range []Kind{KindPhoto, KindVideo} {
		out[k] = p.Status(k)
	}
	return out
}
