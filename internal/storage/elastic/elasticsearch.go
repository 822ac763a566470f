package elastic

import (
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

func NewElasticClient(password string, hosts []string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: hosts,
		Username:  "elastic",
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elastic: failed to create client: %w", err)
	}
	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elastic: cannot connect to cluster: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elastic: cluster returned error: %s", res.String())
	}
	return client, nil
}
