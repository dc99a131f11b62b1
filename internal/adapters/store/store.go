// Package store implements ports.TaskRepository on an in-process map,
// Redis and Badger.
package store

import (
	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/serialize"
)

const (
	// taskKeyPrefix namespaces task records: task:<id>.
	taskKeyPrefix = "task:"

	// updatedIndexKey is the Redis sorted set of task ids scored by last update.
	updatedIndexKey = "tasks:updated"
)

func taskKey(id string) string {
	return taskKeyPrefix + id
}

func encode(task *domain.Task) ([]byte, error) {
	return serialize.Encode(task)
}

func decode(data []byte) (*domain.Task, error) {
	return serialize.Decode[domain.Task](data)
}
