//go:build integration

package mongo

import (
	"testing"

	"github.com/Kodjaoglanian/blockvent/lib/store"
)

var m store.DB
var uri string = "mongodb://localhost:27017"

func TestNewMongo(t *testing.T) {
	var err error
	m, err = New(uri)
	if err != nil {
		t.Errorf("err:%e", err)
	}
	return
}

func TestCloseMongo(t *testing.T) {
	var err error
	m, err = New(uri)
	err = m.(*Mongo).CloseMongo()
	if err != nil {
		t.Errorf("err:%e", err)
	}
	return
}

func TestIdentity(t *testing.T) {
	var err error
	if m, err = New(uri); err != nil {
		t.Fatalf("err:%e", err)
	}
	defer m.(*Mongo).CloseMongo()

	id := store.NewX509Identity("Org1MSP", "cert", "key")
	if err = m.PutIdentity("test-admin", id); err != nil {
		t.Errorf("PutIdentity - err:%e", err)
	}

	got, err := m.GetIdentity("test-admin")
	if err != nil || got != id {
		t.Errorf("GetIdentity - err:%e, got:%+v", err, got)
	}

	if _, err = m.GetIdentity("test-nobody"); err != store.ErrIdentityNotFound {
		t.Errorf("GetIdentity - expected not found but got err:%e", err)
	}
}

func TestCheckpoint(t *testing.T) {
	var err error
	if m, err = New(uri); err != nil {
		t.Fatalf("err:%e", err)
	}
	defer m.(*Mongo).CloseMongo()

	if err = m.(*Mongo).DeleteCheckpoint("testchannel"); err != nil {
		t.Logf("DeleteCheckpoint err:%e", err)
	}

	if _, err = m.LoadCheckpoint("testchannel"); err != store.ErrDataNotFound {
		t.Errorf("LoadCheckpoint - expected not found but got err:%e", err)
	}

	if err := m.SaveCheckpoint("testchannel", store.Checkpoint{Block: 208, TxID: "tx"}); err != nil {
		t.Errorf("SaveCheckpoint - err:%e", err)
	}

	if cp, err2 := m.LoadCheckpoint("testchannel"); err2 != nil || cp.Block != 208 || cp.TxID != "tx" {
		t.Errorf("LoadCheckpoint - err:%e, cp:%+v", err2, cp)
	}
}
