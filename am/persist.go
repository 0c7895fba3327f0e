package am

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/ionclm/errors"
)

// UserConfigPath returns ~/.ionclm/am.toml
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// createBackup keeps one previous copy of configPath as configPath.back1
func createBackup(configPath string) error {
	content, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(configPath+".back1", content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

// ParseValue converts raw to the type key holds.
func ParseValue(key, raw string) (interface{}, error) {
	switch key {
	case "database.path", "cache.dir":
		return raw, nil
	case "cache.offline", "cache.allow_private", "log.json":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "%s wants true or false", key)
		}
		return b, nil
	case "log.verbosity", "ingest.parallel", "cache.timeout_seconds":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "%s wants an integer", key)
		}
		return int64(n), nil
	case "ingest.sources", "ingest.layouts":
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return nil, errors.WithHintf(errors.Newf("unknown key %q", key), "known keys: %s", strings.Join(Keys(), ", "))
}

// SetValue writes key = raw into the TOML file at configPath, creating it
// if needed and backing up the previous version.
func SetValue(configPath, key, raw string) error {
	value, err := ParseValue(key, raw)
	if err != nil {
		return err
	}

	config := make(map[string]interface{})
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, &config); err != nil {
			return errors.Wrapf(err, "failed to parse %s", configPath)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "read %s", configPath)
	}

	section, field, _ := strings.Cut(key, ".")
	table, ok := config[section].(map[string]interface{})
	if !ok {
		table = make(map[string]interface{})
	}
	table[field] = value
	config[section] = table

	// The result must still load.
	candidate := &Config{}
	if err := decodeMap(config, candidate); err != nil {
		return err
	}
	if err := candidate.Validate(); err != nil {
		return errors.Wrapf(err, "refusing to write %s", key)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := createBackup(configPath); err != nil {
		return err
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	return nil
}

func decodeMap(config map[string]interface{}, out *Config) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	v, err := LoadFromBytes(data)
	if err != nil {
		return err
	}
	*out = *v
	return nil
}

// FormatValue renders a setting for display.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case []string:
		return strings.Join(x, ",")
	case []interface{}:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}
