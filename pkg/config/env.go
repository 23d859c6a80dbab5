package config

import (
	"errors"
	"fmt"
	"os"
)

// ErrBucketNameNotSet is returned when neither --bucket nor BUCKET_NAME names a bucket
var ErrBucketNameNotSet = errors.New("BUCKET_NAME environment variable not set")

// DefaultPort is used by the preview server when neither --port nor PORT is set
const DefaultPort = "8080"

// BucketName prefers the flag value and falls back to BUCKET_NAME
func BucketName(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	bucketName := os.Getenv("BUCKET_NAME")
	if bucketName == "" {
		return "", ErrBucketNameNotSet
	}
	return bucketName, nil
}

// Port prefers the flag value and falls back to PORT, then DefaultPort
func Port(flag string) string {
	if flag != "" {
		return flag
	}
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return DefaultPort
}

// ServerAddress returns the listen address for a port
func ServerAddress(port string) string {
	return fmt.Sprintf(":%s", port)
}
