package deferred

import (
	"fmt"
	"path/filepath"

	"github.com/gekko3d/deferred/render/core"
	"github.com/google/uuid"
)

type AssetId string

// AssetServer owns template meshes. Scene objects are instances: copies
// with their own handle and transform.
type AssetServer struct {
	meshes map[AssetId]*core.Mesh
	paths  map[string]AssetId
}

type AssetServerModule struct{}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes: make(map[AssetId]*core.Mesh),
		paths:  make(map[string]AssetId),
	}
}

// AddMesh stores m as a template and returns its id.
func (server *AssetServer) AddMesh(m *core.Mesh) AssetId {
	id := makeAssetId()
	server.meshes[id] = m
	return id
}

// LoadMesh imports a glTF or GLB file once; later calls with the same path
// return the cached id.
func (server *AssetServer) LoadMesh(path string) (AssetId, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if id, ok := server.paths[abs]; ok {
		return id, nil
	}

	m, err := LoadGLTF(path)
	if err != nil {
		return "", err
	}
	id := server.AddMesh(m)
	server.paths[abs] = id
	return id, nil
}

func (server *AssetServer) Mesh(id AssetId) (*core.Mesh, bool) {
	m, ok := server.meshes[id]
	return m, ok
}

// Instance returns an unregistered copy of the template.
func (server *AssetServer) Instance(id AssetId) (*core.Mesh, error) {
	m, ok := server.meshes[id]
	if !ok {
		return nil, fmt.Errorf("unknown asset %s", id)
	}
	return m.Copy(), nil
}

func (server *AssetServer) Len() int {
	return len(server.meshes)
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewAssetServer())
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
