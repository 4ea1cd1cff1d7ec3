package amqp

import (
	"testing"

	"github.com/Kodjaoglanian/blockvent/lib/msg"
)

func TestRoutingKey(t *testing.T) {
	e := msg.AssetEvent{Contract: "patrimonio", Name: "AssetTransferred"}
	if k := RoutingKey("mychannel", e); k != "mychannel.patrimonio.AssetTransferred" {
		t.Errorf("RoutingKey got %s", k)
	}
}
