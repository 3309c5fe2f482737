// Package paths resolves the bbhost configuration, data and state
// locations.
//
// The package wraps github.com/adrg/xdg for XDG Base Directory compliance.
// On Linux the defaults are:
//
//	| Purpose    | Path                                  |
//	|------------|---------------------------------------|
//	| Config     | ~/.config/bbhost/config.yaml          |
//	| Manifests  | ~/.local/share/bbhost/builtins/       |
//	| State      | ~/.local/state/bbhost/state.cbor      |
//
// XDG_CONFIG_HOME, XDG_DATA_HOME and XDG_STATE_HOME override the base
// directories. Values are read once at startup; call [Reload] after
// changing the environment.
package paths
