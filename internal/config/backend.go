package config

// Backend persists non-secret settings under their dotted key names.
// Secrets never pass through it; see secretsFile.
type Backend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}
