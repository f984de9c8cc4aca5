package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	SaveDirectory string
	ReadOnly      bool
	Zoom          float64
	LogFile       string
	Theme         string
}

func defaultConfig() *Config {
	return &Config{
		Zoom:  defaultZoom,
		Theme: "dark",
	}
}

func loadConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultConfig()
	}

	file, err := os.Open(filepath.Join(homeDir, ".erdrawrc"))
	if err != nil {
		return defaultConfig()
	}
	defer file.Close()

	return parseConfig(file, homeDir)
}

// parseConfig reads key=value lines. Unknown keys and malformed values are
// ignored so a bad rc file never stops the editor from starting.
func parseConfig(r io.Reader, homeDir string) *Config {
	config := defaultConfig()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "savedirectory", "save_directory", "savedir":
			config.SaveDirectory = expandPath(value, homeDir)
		case "readonly", "read_only":
			config.ReadOnly = strings.ToLower(value) == "true"
		case "zoom":
			if z, err := strconv.ParseFloat(value, 64); err == nil && z >= minZoom && z <= maxZoom {
				config.Zoom = z
			}
		case "logfile", "log_file":
			config.LogFile = expandPath(value, homeDir)
		case "theme":
			if v := strings.ToLower(value); v == "light" || v == "dark" {
				config.Theme = v
			}
		}
	}

	return config
}

func expandPath(value, homeDir string) string {
	if strings.HasPrefix(value, "~") {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
