package config

import (
	"os"
	"sync"
)

const (
	StorageDriverS3         = "s3"
	StorageDriverFilesystem = "filesystem"
)

type StorageConfig struct {
	Driver    string
	BasePath  string
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

var (
	storageConfig *StorageConfig
	storageOnce   sync.Once
)

func LoadStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		storageConfig = &StorageConfig{
			Driver:    getEnv("STORAGE_DRIVER", StorageDriverFilesystem),
			BasePath:  getEnv("STORAGE_BASE_PATH", "./uploads"),
			Bucket:    getEnv("STORAGE_BUCKET", "cvfiles"),
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			Region:    getEnv("STORAGE_REGION", "auto"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		}
	})
	return storageConfig
}
