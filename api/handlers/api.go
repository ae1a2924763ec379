package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/ridehq/club-manager-api/api"
	"github.com/ridehq/club-manager-api/api/scheduler"
	"github.com/ridehq/club-manager-api/config"
	"github.com/ridehq/club-manager-api/databases"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Feed      *Feed
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	if a.Feed == nil {
		a.Feed = NewFeed()
	}

	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	c := Club{DB: databases.NewClubDatabase(a.dbHelper), UDB: databases.NewUserDatabase(a.dbHelper), IDB: databases.NewInviteDatabase(a.dbHelper), Feed: a.Feed}
	mem := Member{DB: databases.NewUserDatabase(a.dbHelper), CDB: databases.NewClubDatabase(a.dbHelper), Feed: a.Feed}
	inv := Invite{DB: databases.NewInviteDatabase(a.dbHelper), CDB: databases.NewClubDatabase(a.dbHelper)}
	t := Treasury{DB: databases.NewTreasuryDatabase(a.dbHelper), Feed: a.Feed}
	web := Website{DB: databases.NewWebsiteDatabase(a.dbHelper), SDB: databases.NewSectionDatabase(a.dbHelper), Feed: a.Feed}
	sub := Subscription{DB: databases.NewSubscriptionDatabase(a.dbHelper), CDB: databases.NewClubDatabase(a.dbHelper)}
	owner := Owner{CDB: databases.NewClubDatabase(a.dbHelper), SubDB: databases.NewSubscriptionDatabase(a.dbHelper)}
	upload := Upload{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/check-user", http.HandlerFunc(u.UserCheckEmailHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}/club", api.Middleware(http.HandlerFunc(c.ClubByUserIDHandler))).Methods("GET")

	apiCreate.Handle("/owner/login", http.HandlerFunc(owner.OwnerLoginHandler)).Methods("POST")
	apiCreate.Handle("/owner/clubs", api.JWTMiddleware(http.HandlerFunc(owner.ClubsOverviewHandler))).Methods("GET")

	apiCreate.Handle("/club", api.Middleware(http.HandlerFunc(c.CreateClubHandler))).Methods("POST")
	apiCreate.Handle("/club/join", api.Middleware(http.HandlerFunc(c.JoinClubHandler))).Methods("POST")
	apiCreate.Handle("/club/{club_id}", api.Middleware(http.HandlerFunc(c.ClubHandler))).Methods("GET")
	apiCreate.Handle("/club/{club_id}", api.Middleware(http.HandlerFunc(c.UpdateClubFieldHandler))).Methods("PATCH")
	apiCreate.Handle("/club/{club_id}", api.Middleware(http.HandlerFunc(c.DeleteClubByIDHandler))).Methods("DELETE")

	apiCreate.Handle("/club/{club_id}/members", api.Middleware(http.HandlerFunc(mem.MembersHandler))).Methods("GET")
	apiCreate.Handle("/club/{club_id}/members", api.Middleware(http.HandlerFunc(mem.AddMemberHandler))).Methods("POST")
	apiCreate.Handle("/club/{club_id}/members/query", api.Middleware(http.HandlerFunc(mem.MembersWithQueryHandler))).Methods("GET")
	apiCreate.Handle("/club/{club_id}/members/{member_id}", api.Middleware(http.HandlerFunc(mem.UpdateMemberHandler))).Methods("PUT")
	apiCreate.Handle("/club/{club_id}/members/{member_id}", api.Middleware(http.HandlerFunc(mem.DeleteMemberHandler))).Methods("DELETE")

	apiCreate.Handle("/club/{club_id}/invites", api.Middleware(http.HandlerFunc(inv.CreateInviteHandler))).Methods("POST")
	apiCreate.Handle("/club/{club_id}/invites", api.Middleware(http.HandlerFunc(inv.ListInvitesHandler))).Methods("GET")
	apiCreate.Handle("/club/{club_id}/invites/{code}/revoke", api.Middleware(http.HandlerFunc(inv.RevokeInviteHandler))).Methods("PUT")
	apiCreate.Handle("/club/{club_id}/invites/{code}", api.Middleware(http.HandlerFunc(inv.DeleteInviteHandler))).Methods("DELETE")
	apiCreate.Handle("/invites/{code}", http.HandlerFunc(inv.InviteByCodeHandler)).Methods("GET")
	apiCreate.Handle("/invites/{code}/redeem", api.Middleware(http.HandlerFunc(inv.RedeemInviteHandler))).Methods("POST")

	apiCreate.Handle("/club/{club_id}/treasury", api.Middleware(http.HandlerFunc(t.AddEntryHandler))).Methods("POST")
	apiCreate.Handle("/club/{club_id}/treasury", api.Middleware(http.HandlerFunc(t.EntriesHandler))).Methods("GET")
	apiCreate.Handle("/club/{club_id}/treasury/summary", api.Middleware(http.HandlerFunc(t.SummaryHandler))).Methods("GET")
	apiCreate.Handle("/club/{club_id}/treasury/export", api.Middleware(http.HandlerFunc(t.ExportCSVHandler))).Methods("GET")
	apiCreate.Handle("/club/{club_id}/treasury/{entry_id}", api.Middleware(http.HandlerFunc(t.DeleteEntryHandler))).Methods("DELETE")

	apiCreate.Handle("/club/{club_id}/website", http.HandlerFunc(web.ContentHandler)).Methods("GET")
	apiCreate.Handle("/club/{club_id}/website", api.Middleware(http.HandlerFunc(web.UpdateContentHandler))).Methods("PUT")
	apiCreate.Handle("/club/{club_id}/website/gallery", api.Middleware(http.HandlerFunc(web.AddGalleryImageHandler))).Methods("POST")
	apiCreate.Handle("/club/{club_id}/website/gallery/{image_id}", api.Middleware(http.HandlerFunc(web.DeleteGalleryImageHandler))).Methods("DELETE")
	apiCreate.Handle("/club/{club_id}/website/events", api.Middleware(http.HandlerFunc(web.AddEventHandler))).Methods("POST")
	apiCreate.Handle("/club/{club_id}/website/events/{event_id}", api.Middleware(http.HandlerFunc(web.UpdateEventHandler))).Methods("PUT")
	apiCreate.Handle("/club/{club_id}/website/events/{event_id}", api.Middleware(http.HandlerFunc(web.DeleteEventHandler))).Methods("DELETE")
	apiCreate.Handle("/club/{club_id}/website/sections", http.HandlerFunc(web.SectionsHandler)).Methods("GET")
	apiCreate.Handle("/club/{club_id}/website/sections", api.Middleware(http.HandlerFunc(web.CreateSectionHandler))).Methods("POST")
	apiCreate.Handle("/club/{club_id}/website/sections/{section_id}", api.Middleware(http.HandlerFunc(web.DeleteSectionHandler))).Methods("DELETE")
	apiCreate.Handle("/club/{club_id}/website/sections/{section_id}/move", api.Middleware(http.HandlerFunc(web.MoveSectionHandler))).Methods("PUT")
	apiCreate.Handle("/club/{club_id}/website/sections/{section_id}/cards", api.Middleware(http.HandlerFunc(web.AddCardHandler))).Methods("POST")
	apiCreate.Handle("/club/{club_id}/website/sections/{section_id}/cards/{card_id}", api.Middleware(http.HandlerFunc(web.UpdateCardHandler))).Methods("PUT")
	apiCreate.Handle("/club/{club_id}/website/sections/{section_id}/cards/{card_id}", api.Middleware(http.HandlerFunc(web.DeleteCardHandler))).Methods("DELETE")
	apiCreate.Handle("/club/{club_id}/website/sections/{section_id}/cards/{card_id}/move", api.Middleware(http.HandlerFunc(web.MoveCardHandler))).Methods("PUT")

	apiCreate.Handle("/club/{club_id}/website/upload", api.Middleware(http.HandlerFunc(upload.UploadImageHandler))).Methods("POST")
	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(upload.GenerateSignature))).Methods("POST")

	apiCreate.Handle("/club/{club_id}/subscription", api.Middleware(http.HandlerFunc(sub.StatusHandler))).Methods("GET")
	apiCreate.Handle("/club/{club_id}/subscription/checkout-sessions", api.Middleware(http.HandlerFunc(sub.CreateCheckoutSessionHandler))).Methods("POST")
	apiCreate.Handle("/club/{club_id}/subscription/checkout-sessions/verify", api.Middleware(http.HandlerFunc(sub.VerifyCheckoutSessionHandler))).Methods("POST")
	apiCreate.Handle("/club/{club_id}/subscription/customer-portal", api.Middleware(http.HandlerFunc(sub.CustomerPortalHandler))).Methods("POST")

	r.HandleFunc("/ws/{club_id}", a.Feed.ServeWS)

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("club-manager-api has connected to the database")

	// unique indexes back the application-level duplicate checks; without the
	// invite code index two concurrent creates can both pass the count check
	// and insert the same code
	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()
	for _, idx := range []struct{ collection, field string }{
		{"invites", "code"},
		{"clubs", "formattedName"},
		{"users", "email"},
	} {
		if err := a.dbHelper.EnsureUniqueIndex(ctx, idx.collection, idx.field); err != nil {
			zap.S().With(err).Errorf("failed to ensure unique index on %s.%s", idx.collection, idx.field)
			return err
		}
	}

	// initialize stripe
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		return fmt.Errorf("stripe secret key is not set")
	}
	stripe.Key = stripeKey

	// initialize api router
	a.initializeRoutes()

	// start background jobs
	a.Scheduler = scheduler.NewScheduler(
		databases.NewInviteDatabase(a.dbHelper),
		databases.NewSubscriptionDatabase(a.dbHelper),
		databases.NewClubDatabase(a.dbHelper),
		databases.NewUserDatabase(a.dbHelper),
		databases.NewSchedulerLockDatabase(a.dbHelper),
	)
	a.Scheduler.Start()

	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, `{"alive": true}`)
}
