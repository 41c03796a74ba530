package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// SessionMarker records which wallet the user connected, so separate CLI
// invocations share one logical session. It holds no key material, only
// the wallet name and address; the key stays in the keystore and is
// unlocked per process.
//
//	macOS:   ~/Library/Caches/tokenctl/session.json
//	Linux:   ~/.cache/tokenctl/session.json
//	Windows: %LocalAppData%\tokenctl\session.json
type SessionMarker struct {
	Wallet      string `json:"wallet"`
	Address     string `json:"address"`
	ConnectedAt string `json:"connected_at"`
}

func sessionFilePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "tokenctl", "session.json")
}

// SaveSessionMarker records a connected session.
func SaveSessionMarker(walletName, address string) error {
	path := sessionFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(SessionMarker{
		Wallet:      walletName,
		Address:     address,
		ConnectedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadSessionMarker returns the active session marker, or ok=false when no
// session is connected.
func LoadSessionMarker() (SessionMarker, bool) {
	data, err := os.ReadFile(sessionFilePath())
	if err != nil {
		return SessionMarker{}, false
	}
	var m SessionMarker
	if err := json.Unmarshal(data, &m); err != nil {
		return SessionMarker{}, false
	}
	return m, m.Wallet != ""
}

// ClearSessionMarker removes the marker. Idempotent.
func ClearSessionMarker() error {
	err := os.Remove(sessionFilePath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
