package common

import "fmt"

var (
	// Handle grant keys
	grantPrefix string = "familynest:grants"

	// Picker keys
	pickerLock    string = "familynest:picker:lock"
	pickerSession string = "familynest:picker:session:%s" // sessionId

	// Gateway keys
	gatewayInitLock string = "familynest:gateway:init:%s:lock" // name
)

var Keys = &redisKeys{}

type redisKeys struct{}

// Grant keys
func (rk *redisKeys) GrantIndex() string {
	return grantPrefix
}

// Picker keys
func (rk *redisKeys) PickerLock() string {
	return pickerLock
}

func (rk *redisKeys) PickerSession(sessionId string) string {
	return fmt.Sprintf(pickerSession, sessionId)
}

// Gateway keys
func (rk *redisKeys) GatewayInitLock(name string) string {
	return fmt.Sprintf(gatewayInitLock, name)
}
