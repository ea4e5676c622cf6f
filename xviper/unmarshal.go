// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type unmarshaler interface {
	Unmarshal(interface{}, ...viper.DecoderConfigOption) error
}

// DecodeHook is the mapstructure hook used by Unmarshal.  It allows durations such as "15s"
// and comma-separated lists in configuration values.
func DecodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}

// Unmarshal decodes the whole configuration into v using DecodeHook.
func Unmarshal(u unmarshaler, v interface{}) error {
	return u.Unmarshal(v, DecodeHook())
}

// UnmarshalSeveral decodes the whole configuration into each target in turn, stopping at the first error.
func UnmarshalSeveral(u unmarshaler, v ...interface{}) error {
	var err error
	for i := 0; err == nil && i < len(v); i++ {
		err = Unmarshal(u, v[i])
	}

	return err
}

type defaulter interface {
	SetDefault(string, interface{})
}

type Defaults map[string]interface{}

func ApplyDefaults(d defaulter, v Defaults) {
	for key, value := range v {
		d.SetDefault(key, value)
	}
}
