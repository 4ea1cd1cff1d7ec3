// Package blockvent and its sub-packages implement the backend services of an asset registry kept on a Hyperledger
// Fabric network.
/*
blockvent provides you with two services:

1) a gateway service (package gateway) that implements a JSON API to list, read, create, update and transfer the
 assets of the registry and read their history, and serves the browser client.

2) a listener service (package listener) that relays the events emitted by the registry contract to a message broker.

Architecture

All the registry rules live in the contract deployed to the Fabric network. The services only call it, signing with an
identity kept in a wallet. The wallet and the listener checkpoints are kept in a store (package lib/store) that can be
a directory of files, MongoDB or PostgreSQL, chosen in the JSON config file given at startup. The file wallet is
compatible with the file system wallets of the Fabric SDKs.

The ledger layer (package lib/ledger) implements the contract operations over a session that is opened lazily and
shared by all requests. Package lib/ledger/fabric binds it to a Fabric gateway peer taken from a connection profile.

The listener publishes events to the message broker layer (package lib/msg), implemented for AMQP brokers, and saves
the position of the last event relayed so it resumes there after a restart.

The services can also be monitored via a Prometheus API by setting the flag "-m" at startup.

Gateway

The gateway service can be started running cmd/gateway/main.go. The API is:

	GET  /assets               all the assets
	GET  /asset?id=<id>        one asset
	GET  /history?id=<id>      changes of one asset
	POST /create               {id, nome, descricao, responsavel, local, valor, status}
	POST /update               {id, and any other field to change}
	POST /transfer             {id, novoresponsavel}

Every reply is the JSON object {success, data, error}. Any other path is a file of the public directory, falling back
to index.html.

Listener

The listener service can be started running cmd/listener/main.go. Events are published to the topic exchange "ae"
with routing key <channel>.<contract>.<event name>.

*/
package blockvent
