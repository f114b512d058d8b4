package fsio

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic は payload を一時ファイルに書き込み、fsync 後に
// rename することで、途中でクラッシュしても壊れたファイルを残さない。
func WriteFileAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	done := false
	defer func() {
		if !done {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(payload); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		// Windowsでは宛先が存在するとrenameが失敗することがある。
		// 既存ファイルを退避してから差し替え、失敗したら戻す。
		// 宛先を消してからの再renameだと、2度目の失敗で旧ファイルごと失う
		if _, statErr := os.Stat(path); statErr != nil {
			return fmt.Errorf("failed to rename temp file: %w", err)
		}
		backupName := path + ".bak.tmp"
		_ = os.Remove(backupName)
		if backupErr := os.Rename(path, backupName); backupErr != nil {
			return fmt.Errorf("failed to move %s aside: %w (rename err: %v)", path, backupErr, err)
		}
		if swapErr := os.Rename(tmpName, path); swapErr != nil {
			_ = os.Rename(backupName, path)
			return fmt.Errorf("failed to replace %s: %w", path, swapErr)
		}
		_ = os.Remove(backupName)
	}

	done = true
	return nil
}
