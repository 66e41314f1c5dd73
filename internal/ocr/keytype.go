package ocr

import "regexp"

// KeyType classifies an ocr.space API key; free-tier and PRO keys are
// served by different hosts.
type KeyType string

const (
	KeyTypeFree KeyType = "free"
	KeyTypePro  KeyType = "pro"
)

// Free keys look like K81234567888957: a leading K followed by digits.
// The public demo key is free-tier too. Anything else is assumed PRO.
var freeKeyPattern = regexp.MustCompile(`^K\d+$`)

func DetectKeyType(apiKey string) KeyType {
	if apiKey == "helloworld" || freeKeyPattern.MatchString(apiKey) {
		return KeyTypeFree
	}
	return KeyTypePro
}
