package env

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var (
	dVal sync.Map
	once sync.Once
)

// Load reads a .env file, if one is present, without overriding
// variables already set in the environment. Safe to call more
// than once.
func Load() {
	once.Do(func() {
		godotenv.Load()
	})
}

// RegisterDefault registers a fallback value returned by GetVar
// when the variable is not set in the environment.
func RegisterDefault(key, defaultValue string) {
	dVal.Store(key, defaultValue)
}

func GetVar(key string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		if v, _ := dVal.Load(key); v != nil {
			return v.(string)
		}
		return ""
	}
	return value
}
