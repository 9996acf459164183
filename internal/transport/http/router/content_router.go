package router

import (
	"github.com/bravo68web/scribe/internal/transport/http/handler"
)

func (r *Router) contentRouter() {
	docs := handler.NewDocHandler(r.Deps.RepoService)
	assets := handler.NewAssetHandler(r.Deps.RepoService)

	api := r.server.Group("/api")
	{
		api.GET("/tree/doc", r.auth.RequireAuth(), docs.DocTree)
		api.GET("/tree/asset", r.auth.RequireAuth(), assets.AssetTree)

		// Write permissions are enforced in the service layer, where the
		// protected state of the current branch is known
		api.GET("/doc", r.auth.RequireAuth(), docs.GetDoc)
		api.PUT("/doc", r.auth.RequireAuth(), docs.PutDoc)
		api.DELETE("/doc", r.auth.RequireAuth(), docs.DeleteDoc)

		api.GET("/asset/*path", r.auth.RequireAuth(), assets.GetAsset)
		api.PUT("/asset/*path", r.auth.RequireAuth(), assets.PutAsset)
		api.DELETE("/asset/*path", r.auth.RequireAuth(), assets.DeleteAsset)
	}
}
