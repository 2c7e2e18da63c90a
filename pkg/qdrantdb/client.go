package qdrantdb

import (
	"github.com/qdrant/go-client/qdrant"
)

type ArticleClient struct {
	Client *qdrant.Client
}

func NewClient(host string, port int) (*ArticleClient, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port, // gRPC port
	})
	if err != nil {
		return nil, err
	}
	return &ArticleClient{Client: client}, err
}
