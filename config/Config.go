/*
File Name:  Config.go

Ambient configuration, adapted from the teacher's Config.go. Fields are
trimmed down to what this module's own concerns need: where to log,
which authcache backend to use, an optional ceiling on the ttl
condition a capability may grant, and where the identity keypair lives.
The teacher's peer/seed-list fields belonged to the transport and
discovery layer and have no home here.
*/

package config

import (
	_ "embed" // required for embedding the default config document
	"io/ioutil"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the current module version.
const Version = "0.1"

// Config is the set of ambient settings loaded from a YAML file.
type Config struct {
	LogFile string `yaml:"LogFile"` // Log file path

	CacheBackend string `yaml:"CacheBackend"` // "memory" or "pogreb"
	CachePath    string `yaml:"CachePath"`     // Pogreb database path, used when CacheBackend is "pogreb"

	// DefaultTTLCeiling is a ceiling on the ttl value a capability's
	// condition may specify, 0 meaning none. It is only loaded and saved
	// here; the authorization package does not read it and enforces no
	// ceiling.
	DefaultTTLCeiling uint64 `yaml:"DefaultTTLCeiling"`

	IdentityKeyFile string `yaml:"IdentityKeyFile"` // Hex-encoded Ed25519 private key file
}

var current Config
var configFile string

//go:embed "Config Default.yaml"
var defaultConfig []byte

// LoadConfig reads the YAML configuration file into the package-level
// Config. If the file does not exist or is empty, the embedded default
// document is used instead.
//
// Status: 0 = unknown error checking config file, 1 = error reading
// config file, 2 = error parsing config file, 3 = success.
func LoadConfig(filename string) (status int, err error) {
	var configData []byte
	configFile = filename

	stats, statErr := os.Stat(filename)
	switch {
	case statErr != nil && os.IsNotExist(statErr):
		configData = defaultConfig
	case statErr != nil:
		return 0, statErr
	case stats.Size() == 0:
		configData = defaultConfig
	default:
		if configData, err = ioutil.ReadFile(filename); err != nil {
			return 1, err
		}
	}

	if err = yaml.Unmarshal(configData, &current); err != nil {
		return 2, err
	}

	return 3, nil
}

// Current returns the loaded configuration. Call LoadConfig first.
func Current() Config {
	return current
}

// SaveConfig persists the current configuration back to the file it was
// loaded from, logging on failure rather than returning an error —
// matching the teacher's fire-and-forget saveConfig.
func SaveConfig() {
	data, err := yaml.Marshal(current)
	if err != nil {
		log.Printf("SaveConfig: error marshalling config: %v\n", err)
		return
	}

	if err := ioutil.WriteFile(configFile, data, 0644); err != nil {
		log.Printf("SaveConfig: error writing config %q: %v\n", configFile, err)
		return
	}
}

// SetIdentityKeyFile updates the in-memory identity key file path. It
// does not write the config file; SaveConfig persists the change.
func SetIdentityKeyFile(path string) {
	current.IdentityKeyFile = path
}

// InitLog redirects subsequent log.Printf output into the configured
// log file.
func InitLog() (err error) {
	logFile, err := os.OpenFile(current.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	log.SetOutput(logFile)
	log.Printf("---- nma-core %s ----\n", Version)

	return nil
}
