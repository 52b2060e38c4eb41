package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Input        string `mapstructure:"input"`
	OutputFolder string `mapstructure:"output_folder"`
	OutputName   string `mapstructure:"output_name"`
	Output       string `mapstructure:"output"`
	Strict       bool   `mapstructure:"strict"`
	Vocabulary   string `mapstructure:"vocabulary"`
	Workers      int    `mapstructure:"workers"`
	KeepGoing    bool   `mapstructure:"keep_going"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	viper.SetDefault("input", ".")
	viper.SetDefault("output_folder", ".")
	viper.SetDefault("output_name", "collate")
	viper.SetDefault("output", "file")     // file, print, copy
	viper.SetDefault("strict", false)      // Reject lines that fit no category
	viper.SetDefault("vocabulary", "")     // YAML file extending the built-in tables
	viper.SetDefault("workers", runtime.NumCPU())
	viper.SetDefault("keep_going", false) // Skip files that fail to parse
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	viper.SetConfigName("mslg")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "mslg"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("MSLG")
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// GetInput returns the input folder with tilde expansion
func GetInput() string {
	return expandTilde(viper.GetString("input"))
}

// GetOutputFolder returns the output folder with tilde expansion
func GetOutputFolder() string {
	return expandTilde(viper.GetString("output_folder"))
}

// GetOutputName returns the base name of the collated file
func GetOutputName() string {
	return viper.GetString("output_name")
}

// GetOutput returns the output mode
func GetOutput() string {
	return viper.GetString("output")
}

// GetStrict returns whether strict parsing is on
func GetStrict() bool {
	return viper.GetBool("strict")
}

// GetVocabulary returns the vocabulary file path, empty for built-ins
func GetVocabulary() string {
	return expandTilde(viper.GetString("vocabulary"))
}

// GetWorkers returns the number of parallel parses
func GetWorkers() int {
	return viper.GetInt("workers")
}

// GetKeepGoing returns whether failing files are skipped
func GetKeepGoing() bool {
	return viper.GetBool("keep_going")
}

// GetLogLevel returns the log level
func GetLogLevel() string {
	return viper.GetString("log_level")
}

// GetLogFormat returns the log format (text or json)
func GetLogFormat() string {
	return viper.GetString("log_format")
}

// SetInput sets the input folder at runtime
func SetInput(path string) {
	viper.Set("input", path)
	C.Input = path
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
