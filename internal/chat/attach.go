package chat

import (
	"fmt"
	"os"

	"github.com/matheus3301/pawchat/internal/upload"
)

func loadAttachment(path string) (Attachment, error) {
	info, err := upload.Stat(path)
	if err != nil {
		return Attachment{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("read attachment: %w", err)
	}
	return Attachment{Info: info, Data: data}, nil
}
