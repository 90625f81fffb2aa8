package routes

import (
	"net/http"

	"github.com/ijake-16/homebar-menu/menu"
	"github.com/ijake-16/homebar-menu/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/menupic/*filepath", http.Dir("static/menupic"))
}

func AddMenuRoutes(router *httprouter.Router, h *menu.Handler, rl *ratelim.RateLimiter) {
	router.GET("/menu", h.GetDrinks)
	router.GET("/menu/:id", h.GetDrink)
	// separate prefix: httprouter cannot mix a static segment with :id
	router.GET("/print/menu", h.PrintMenu)
	router.GET("/menu/:id/qr", h.DrinkQR)

	router.POST("/menu", rl.Limit(h.CreateDrink))
	router.PUT("/menu/:id", rl.Limit(h.UpdateDrink))
	router.DELETE("/menu/:id", rl.Limit(h.DeleteDrink))
	router.POST("/menu/:id/image", rl.Limit(h.UploadDrinkImage))
}
