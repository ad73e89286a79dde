// Package config handles boxify configuration using Viper.
//
// Settings come from, lowest precedence first: built-in defaults, a TOML
// file (boxify.toml in the working directory, or the file named by
// --config), and BOXIFY_* environment variables. A .env file in the working
// directory is loaded into the environment first.
package config
