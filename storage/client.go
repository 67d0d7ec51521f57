// Package storage is a client for the KNoT cloud data storage service.
//
// Each method makes a single GET request. Failed requests return a *network.Error
// holding the http status (or network.UnexpectedErrorCode when the service could not be reached)
// and the message sent by the service:
//
//	data, err := client.ListDataByDevice(ctx, "0643ca1462f94b79", network.Query{"take": 10})
//	var storageErr *network.Error
//	if errors.As(err, &storageErr) && storageErr.Code == http.StatusNotFound {
//		...
//	}
package storage

import (
	"context"
	"fmt"

	"github.com/knot-cloud/storage-go/network"
)

// Transport sends authenticated GET requests. *network.HTTP satisfies this interface.
type Transport interface {
	Get(ctx context.Context, path string, query network.Query, out any) error
}

// Client reads device data from the storage service
type Client struct {
	transport Transport
}

// New creates a Client using a network.HTTP transport built from cfg
func New(cfg network.Config) (*Client, error) {
	transport, err := network.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(transport), nil
}

// NewClient creates a Client that sends its requests with transport
func NewClient(transport Transport) *Client {
	return &Client{
		transport: transport,
	}
}

// ListData returns the data sent by all the devices the token has access to
func (c *Client) ListData(ctx context.Context, query network.Query) ([]Data, error) {
	return c.list(ctx, "/data", query)
}

// ListDataByDevice returns the data sent by a device.
// The id is not validated: the request is sent as is and the service reports any problem.
func (c *Client) ListDataByDevice(ctx context.Context, deviceID string, query network.Query) ([]Data, error) {
	return c.list(ctx, fmt.Sprintf("/data/%s", deviceID), query)
}

// ListDataBySensor returns the data sent by a single sensor of a device
func (c *Client) ListDataBySensor(ctx context.Context, deviceID string, sensorID int, query network.Query) ([]Data, error) {
	return c.list(ctx, fmt.Sprintf("/data/%s/sensor/%d", deviceID, sensorID), query)
}

func (c *Client) list(ctx context.Context, path string, query network.Query) ([]Data, error) {
	var data []Data
	if err := c.transport.Get(ctx, path, query, &data); err != nil {
		return nil, err
	}
	return data, nil
}
