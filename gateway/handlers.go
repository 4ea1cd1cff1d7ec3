package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/Kodjaoglanian/blockvent/lib/ledger"
)

// Errors returned to client requests.
var (
	ErrNoID          = errors.New("asset id is required")
	ErrMissingFields = errors.New("all fields are required: id, nome, descricao, responsavel, local, valor, status")
	ErrNoTransfer    = errors.New("asset id and new custodian are required")
	ErrBadBody       = errors.New("request body must be a JSON object")
	ErrNoRoute       = errors.New("route not found")
)

// Response defines the data structure returned to the client making the http request.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// createReq is the body of a create request. Every field is required and a zero valor counts as missing.
type createReq struct {
	ID          string        `json:"id" validate:"required"`
	Nome        string        `json:"nome" validate:"required"`
	Descricao   string        `json:"descricao" validate:"required"`
	Responsavel string        `json:"responsavel" validate:"required"`
	Local       string        `json:"local" validate:"required"`
	Valor       ledger.Amount `json:"valor" validate:"required"`
	Status      string        `json:"status" validate:"required"`
}

// updateReq is the body of an update request. Only the id is required, empty fields are left untouched.
type updateReq struct {
	ID          string        `json:"id" validate:"required"`
	Nome        string        `json:"nome"`
	Descricao   string        `json:"descricao"`
	Responsavel string        `json:"responsavel"`
	Local       string        `json:"local"`
	Valor       ledger.Amount `json:"valor"`
	Status      string        `json:"status"`
}

// transferReq is the body of a transfer request.
type transferReq struct {
	ID              string `json:"id" validate:"required"`
	NovoResponsavel string `json:"novoresponsavel" validate:"required"`
}

// reply writes res to the client with the given status code and logs the request.
func reply(rw http.ResponseWriter, r *http.Request, code int, data json.RawMessage, err error) {
	res := Response{Success: err == nil}
	if err != nil {
		res.Error = err.Error()
	} else if data != nil {
		res.Data = data
	}

	log.Printf("httpreq from %v %s %s code:%d err:%v", r.RemoteAddr, r.Method, r.RequestURI, code, err)

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	_ = json.NewEncoder(rw).Encode(&res)
}

// assetsHandler replies all the assets in the registry.
func (g *Gateway) assetsHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var data json.RawMessage

	defer func() {
		if err != nil {
			reply(rw, r, http.StatusInternalServerError, nil, err)
		} else {
			reply(rw, r, http.StatusOK, data, nil)
		}
	}()

	data, err = g.lc.GetAllAssets()
}

// assetHandler replies the asset given in the query ?id=.
func (g *Gateway) assetHandler(rw http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		reply(rw, r, http.StatusBadRequest, nil, ErrNoID)

		return
	}

	data, err := g.lc.GetAsset(id)
	if err != nil {
		reply(rw, r, http.StatusInternalServerError, nil, err)

		return
	}

	reply(rw, r, http.StatusOK, data, nil)
}

// historyHandler replies the history of the asset given in the query ?id=.
func (g *Gateway) historyHandler(rw http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		reply(rw, r, http.StatusBadRequest, nil, ErrNoID)

		return
	}

	data, err := g.lc.GetAssetHistory(id)
	if err != nil {
		reply(rw, r, http.StatusInternalServerError, nil, err)

		return
	}

	reply(rw, r, http.StatusOK, data, nil)
}

// createHandler creates the asset in the request body. All fields are required.
func (g *Gateway) createHandler(rw http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decode(r, &req); err != nil {
		reply(rw, r, http.StatusBadRequest, nil, err)

		return
	}

	if err := g.validate.Struct(req); err != nil {
		reply(rw, r, http.StatusBadRequest, nil, ErrMissingFields)

		return
	}

	data, err := g.lc.CreateAsset(ledger.Asset(req))
	if err != nil {
		reply(rw, r, http.StatusInternalServerError, nil, err)

		return
	}

	reply(rw, r, http.StatusCreated, data, nil)
}

// updateHandler updates the fields given in the request body of the asset with the given id.
func (g *Gateway) updateHandler(rw http.ResponseWriter, r *http.Request) {
	var req updateReq
	if err := decode(r, &req); err != nil {
		reply(rw, r, http.StatusBadRequest, nil, err)

		return
	}

	if err := g.validate.Struct(req); err != nil {
		reply(rw, r, http.StatusBadRequest, nil, ErrNoID)

		return
	}

	data, err := g.lc.UpdateAsset(req.patch())
	if err != nil {
		reply(rw, r, http.StatusInternalServerError, nil, err)

		return
	}

	reply(rw, r, http.StatusOK, data, nil)
}

// transferHandler transfers the asset with the given id to a new custodian.
func (g *Gateway) transferHandler(rw http.ResponseWriter, r *http.Request) {
	var req transferReq
	if err := decode(r, &req); err != nil {
		reply(rw, r, http.StatusBadRequest, nil, err)

		return
	}

	if err := g.validate.Struct(req); err != nil {
		reply(rw, r, http.StatusBadRequest, nil, ErrNoTransfer)

		return
	}

	data, err := g.lc.TransferAsset(req.ID, req.NovoResponsavel)
	if err != nil {
		reply(rw, r, http.StatusInternalServerError, nil, err)

		return
	}

	reply(rw, r, http.StatusOK, data, nil)
}

// notFoundHandler replies to API paths that are not routes or are called with the wrong method.
func (g *Gateway) notFoundHandler(rw http.ResponseWriter, r *http.Request) {
	reply(rw, r, http.StatusNotFound, nil, ErrNoRoute)
}

// decode reads the JSON object in the request body into v. An empty body is an empty object.
func decode(r *http.Request, v interface{}) error {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}

	if err = json.Unmarshal(b, v); err != nil {
		if errors.Is(err, ledger.ErrBadAmount) {
			return err
		}

		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}

	return nil
}

// patch returns the partial update with the non empty fields of the request.
func (u updateReq) patch() ledger.AssetPatch {
	p := ledger.AssetPatch{ID: u.ID}

	set := func(s string) *string {
		if s == "" {
			return nil
		}

		return &s
	}

	p.Nome = set(u.Nome)
	p.Descricao = set(u.Descricao)
	p.Responsavel = set(u.Responsavel)
	p.Local = set(u.Local)
	p.Status = set(u.Status)

	if u.Valor != 0 {
		v := u.Valor
		p.Valor = &v
	}

	return p
}
