package router

import (
	"github.com/gin-gonic/gin"
	_ "github.com/propledger/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SwaggerPath is where the API documentation is served
const SwaggerPath = "/swagger/*any"

// Swagger serves the Swagger UI and doc.json at SwaggerPath. protection runs
// first; it bypasses the API group middleware like a public route.
func (r *Router) Swagger(protection ...gin.HandlerFunc) *Router {
	handlers := make([]gin.HandlerFunc, 0, len(protection)+1)
	handlers = append(handlers, protection...)
	handlers = append(handlers, ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET(SwaggerPath, handlers...)
	return r
}
