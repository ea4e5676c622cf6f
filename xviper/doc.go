// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xviper provides customizations on use of viper for configuration loading.

Configuration is layered in the usual viper order: flags, then environment variables
prefixed with the application name, then an optional configuration file, then defaults.
*/
package xviper
