package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/BryanLeite-dev/orcestra-dicom-app/controllers"
	"github.com/BryanLeite-dev/orcestra-dicom-app/controllers/auth"
	"github.com/BryanLeite-dev/orcestra-dicom-app/middleware"
)

// ApiRoutes registers every authenticated and public application route on the
// given subrouter.
func ApiRoutes(api *mux.Router) {
	// login/register: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// session: 120 reads, 60 writes per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)

	authed := func(h http.HandlerFunc) http.Handler {
		return userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(h)))
	}
	director := func(h http.HandlerFunc) http.Handler {
		return userLimiter.Middleware(middleware.AuthMiddleware(middleware.DirectorMiddleware(http.HandlerFunc(h))))
	}

	// Auth
	api.Handle("/auth/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/auth/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/auth/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/auth/logout", authed(auth.LogoutHandler)).Methods(http.MethodPost)
	api.Handle("/auth/logout-all", authed(auth.LogoutAllHandler)).Methods(http.MethodPost)

	// Profile
	api.Handle("/users/me", authed(controllers.MeHandler)).Methods(http.MethodGet)
	api.Handle("/users/me", authed(controllers.ProfileUpdateHandler)).Methods(http.MethodPut)
	api.Handle("/users/team", authed(controllers.TeamMembersHandler)).Methods(http.MethodGet)
	api.Handle("/users", director(controllers.UserListHandler)).Methods(http.MethodGet)
	api.Handle("/users/{id:[0-9]+}", authed(controllers.UserGetHandler)).Methods(http.MethodGet)
	api.Handle("/users/{id:[0-9]+}/role", director(controllers.UserRoleHandler)).Methods(http.MethodPatch)
	api.Handle("/users/{id:[0-9]+}/coordenadoria", director(controllers.UserCoordenadoriaHandler)).Methods(http.MethodPatch)

	// Coordenadorias
	api.Handle("/coordenadorias", authed(controllers.CoordenadoriaListHandler)).Methods(http.MethodGet)
	api.Handle("/coordenadorias/{id:[0-9]+}", authed(controllers.CoordenadoriaGetHandler)).Methods(http.MethodGet)
	api.Handle("/coordenadorias", director(controllers.CoordenadoriaCreateHandler)).Methods(http.MethodPost)
	api.Handle("/coordenadorias/{id:[0-9]+}", director(controllers.CoordenadoriaUpdateHandler)).Methods(http.MethodPut)
	api.Handle("/coordenadorias/{id:[0-9]+}", director(controllers.CoordenadoriaDeleteHandler)).Methods(http.MethodDelete)

	// Sprints
	api.Handle("/sprints", authed(controllers.SprintListHandler)).Methods(http.MethodGet)
	api.Handle("/sprints/atual", authed(controllers.SprintCurrentHandler)).Methods(http.MethodGet)
	api.Handle("/sprints/{id:[0-9]+}", authed(controllers.SprintGetHandler)).Methods(http.MethodGet)
	api.Handle("/sprints", director(controllers.SprintCreateHandler)).Methods(http.MethodPost)
	api.Handle("/sprints/{id:[0-9]+}", director(controllers.SprintUpdateHandler)).Methods(http.MethodPut)
	api.Handle("/sprints/{id:[0-9]+}/ativar", director(controllers.SprintActivateHandler)).Methods(http.MethodPost)
	api.Handle("/sprints/{id:[0-9]+}", director(controllers.SprintDeleteHandler)).Methods(http.MethodDelete)
	api.Handle("/sprints/{id:[0-9]+}/tarefas", authed(controllers.TarefaListBySprintHandler)).Methods(http.MethodGet)

	// Tarefas
	api.Handle("/tarefas/minhas", authed(controllers.TarefaMyHandler)).Methods(http.MethodGet)
	api.Handle("/tarefas/{id:[0-9]+}", authed(controllers.TarefaGetHandler)).Methods(http.MethodGet)
	api.Handle("/tarefas", director(controllers.TarefaCreateHandler)).Methods(http.MethodPost)
	api.Handle("/tarefas/{id:[0-9]+}", director(controllers.TarefaUpdateHandler)).Methods(http.MethodPut)
	api.Handle("/tarefas/{id:[0-9]+}/status", authed(controllers.TarefaStatusHandler)).Methods(http.MethodPatch)
	api.Handle("/tarefas/{id:[0-9]+}/aprovar", director(controllers.TarefaApproveHandler)).Methods(http.MethodPost)
	api.Handle("/tarefas/{id:[0-9]+}/rejeitar", director(controllers.TarefaRejectHandler)).Methods(http.MethodPost)
	api.Handle("/tarefas/{id:[0-9]+}/membros", director(controllers.TarefaAssignHandler)).Methods(http.MethodPut)
	api.Handle("/tarefas/{id:[0-9]+}", director(controllers.TarefaDeleteHandler)).Methods(http.MethodDelete)

	// Gamification
	api.Handle("/gamificacao/stats", authed(controllers.MyStatsHandler)).Methods(http.MethodGet)
	api.Handle("/gamificacao/ranking", authed(controllers.LeaderboardHandler)).Methods(http.MethodGet)
	api.Handle("/gamificacao/transacoes", authed(controllers.MyTransactionsHandler)).Methods(http.MethodGet)
	api.Handle("/gamificacao/escudo", authed(controllers.BuyShieldHandler)).Methods(http.MethodPost)
	api.Handle("/gamificacao/segunda-chance", authed(controllers.UseSecondChanceHandler)).Methods(http.MethodPost)

	// Conquistas
	api.Handle("/conquistas", authed(controllers.ConquistaListHandler)).Methods(http.MethodGet)
	api.Handle("/conquistas/minhas", authed(controllers.MyConquistasHandler)).Methods(http.MethodGet)
	api.Handle("/conquistas", director(controllers.ConquistaCreateHandler)).Methods(http.MethodPost)
	api.Handle("/conquistas/{id:[0-9]+}", director(controllers.ConquistaUpdateHandler)).Methods(http.MethodPut)
	api.Handle("/conquistas/{id:[0-9]+}/conceder", director(controllers.ConquistaAwardHandler)).Methods(http.MethodPost)

	// Feed
	api.Handle("/feed", authed(controllers.FeedHandler)).Methods(http.MethodGet)
	api.Handle("/feed/{id:[0-9]+}/reagir", authed(controllers.FeedReactHandler)).Methods(http.MethodPost)

	// Shop
	api.Handle("/shop/itens", authed(controllers.ShopListHandler)).Methods(http.MethodGet)
	api.Handle("/shop/inventario", authed(controllers.ShopInventoryHandler)).Methods(http.MethodGet)
	api.Handle("/shop/itens/{id:[0-9]+}/comprar", authed(controllers.ShopBuyHandler)).Methods(http.MethodPost)
	api.Handle("/shop/inventario/{id:[0-9]+}/equipar", authed(controllers.ShopEquipHandler)).Methods(http.MethodPost)
	api.Handle("/shop/itens", director(controllers.ShopItemCreateHandler)).Methods(http.MethodPost)
	api.Handle("/shop/itens/{id:[0-9]+}", director(controllers.ShopItemUpdateHandler)).Methods(http.MethodPut)
	api.Handle("/shop/itens/{id:[0-9]+}/imagem", director(controllers.ShopItemImageHandler)).Methods(http.MethodPost)

	// Marketing (director only)
	api.Handle("/marketing/dashboard", director(controllers.MarketingDashboardHandler)).Methods(http.MethodGet)
	api.Handle("/marketing/leads", director(controllers.LeadListHandler)).Methods(http.MethodGet)
	api.Handle("/marketing/leads", director(controllers.LeadCreateHandler)).Methods(http.MethodPost)
	api.Handle("/marketing/leads/{id:[0-9]+}/status", director(controllers.LeadStatusHandler)).Methods(http.MethodPatch)
	api.Handle("/marketing/campanhas", director(controllers.CampanhaListHandler)).Methods(http.MethodGet)
	api.Handle("/marketing/campanhas", director(controllers.CampanhaCreateHandler)).Methods(http.MethodPost)
	api.Handle("/marketing/conteudos", director(controllers.ConteudoListHandler)).Methods(http.MethodGet)
}
