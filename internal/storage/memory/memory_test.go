package memory

import (
	"testing"

	"github.com/MikhailRaia/utility-suite/internal/storage"
	"github.com/MikhailRaia/utility-suite/internal/storage/storagetest"
)

func TestStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return NewStorage()
	})
}
