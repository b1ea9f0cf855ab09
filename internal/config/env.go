package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// LoadEnv loads environment variables into the config struct. Sections with
// `env` struct tags are processed by reflection; the four database pools use
// the prefix convention of the original deployment (DB_, DBR_, DBL_, DBLR_).
func LoadEnv(config *AppConfig) error {
	for _, section := range []interface{}{
		&config.App,
		&config.Server,
		&config.JWT,
		&config.APIKeys,
		&config.Logging,
		&config.CORS,
		&config.PasswordHash,
	} {
		if err := processStructEnv(section); err != nil {
			return err
		}
	}

	loadDatabaseEnv(&config.Databases.Main, "DB")
	loadDatabaseEnv(&config.Databases.Replica, "DBR")
	loadDatabaseEnv(&config.Databases.Log, "DBL")
	loadDatabaseEnv(&config.Databases.LogReplica, "DBLR")

	return nil
}

// loadDatabaseEnv overrides one pool's settings from <prefix>_HOST, _PORT,
// _USER, _PWD and _NAME variables.
func loadDatabaseEnv(dbs *DatabaseSettings, prefix string) {
	if v, ok := os.LookupEnv(prefix + "_HOST"); ok {
		dbs.Host = v
	}
	if v, ok := os.LookupEnv(prefix + "_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			dbs.Port = port
		}
	}
	if v, ok := os.LookupEnv(prefix + "_USER"); ok {
		dbs.User = v
	}
	if v, ok := os.LookupEnv(prefix + "_PWD"); ok {
		dbs.Password = v
	}
	if v, ok := os.LookupEnv(prefix + "_NAME"); ok {
		dbs.Name = v
	}
}

// processStructEnv processes environment variables for a struct using its
// `env` tags.
func processStructEnv(s interface{}) error {
	val := reflect.ValueOf(s).Elem()
	typ := val.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		envValue, exists := os.LookupEnv(envName)
		if !exists {
			continue
		}

		switch fieldVal.Kind() {
		case reflect.String:
			fieldVal.SetString(envValue)

		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if field.Type == reflect.TypeOf(time.Duration(0)) {
				duration, err := time.ParseDuration(envValue)
				if err != nil {
					return fmt.Errorf("invalid duration for %s: %w", envName, err)
				}
				fieldVal.Set(reflect.ValueOf(duration))
			} else {
				intValue, err := strconv.ParseInt(envValue, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid integer for %s: %w", envName, err)
				}
				fieldVal.SetInt(intValue)
			}

		case reflect.Bool:
			boolValue, err := strconv.ParseBool(envValue)
			if err != nil {
				return fmt.Errorf("invalid boolean for %s: %w", envName, err)
			}
			fieldVal.SetBool(boolValue)

		case reflect.Float32, reflect.Float64:
			floatValue, err := strconv.ParseFloat(envValue, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", envName, err)
			}
			fieldVal.SetFloat(floatValue)

		case reflect.Slice:
			if fieldVal.Type().Elem().Kind() == reflect.String {
				values := strings.Split(envValue, ",")
				for i, v := range values {
					values[i] = strings.TrimSpace(v)
				}
				fieldVal.Set(reflect.ValueOf(values))
			}

		default:
			// Unsupported field kinds are left to YAML/defaults.
		}
	}

	return nil
}
