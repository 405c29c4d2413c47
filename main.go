package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/trickdeck/trickdeckbackend/config"
	"github.com/trickdeck/trickdeckbackend/crud"
	"github.com/trickdeck/trickdeckbackend/database"
	"github.com/trickdeck/trickdeckbackend/handlers"
	"github.com/trickdeck/trickdeckbackend/mailer"
	"github.com/trickdeck/trickdeckbackend/media"
	"github.com/trickdeck/trickdeckbackend/models"
	"github.com/trickdeck/trickdeckbackend/permissions"
	"github.com/trickdeck/trickdeckbackend/repository"
	"github.com/trickdeck/trickdeckbackend/services"
	"github.com/trickdeck/trickdeckbackend/templates"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{
		filepath.Join(cfg.MediaStoragePath, cfg.FiguresSubDir),
		filepath.Join(cfg.MediaStoragePath, cfg.AvatarsSubDir),
		filepath.Dir(cfg.DatabasePath),
	}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeFigureImage: cfg.FiguresSubDir,
		media.AssetTypeAvatar:      cfg.AvatarsSubDir,
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}
	mediaProcessor := media.NewProcessor(mediaStore)

	userRepo := repository.NewGormUserRepository(db)
	figureRepo := repository.NewGormFigureRepository(db)
	imageRepo := repository.NewGormImageRepository(db)
	videoRepo := repository.NewGormVideoRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
		log.Printf("Sending mail through %s:%d", cfg.SMTPHost, cfg.SMTPPort)
	} else {
		mail = mailer.LogMailer{}
		log.Println("SMTP_HOST not set, mail links go to the log")
	}

	accounts := services.NewAccountService(userRepo, mail, cfg.BaseURL)

	templateSet, err := templates.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to parse templates: %v", err)
	}

	sessionMgr := handlers.NewSessionManager(cfg.SessionSecret, cfg.SecureCookies)
	renderer := handlers.NewRenderer(templateSet, sessionMgr)
	validate := handlers.NewValidator()
	decider := permissions.NewDecider()

	// an image referenced as a figure's main image must be detached before
	// its row can go away
	lifecycle := crud.NewDetachRegistry()
	lifecycle.Register("image", func(entity any) error {
		img, ok := entity.(*models.Image)
		if !ok {
			return nil
		}
		return figureRepo.ClearMainImage(img.FigureID, img.ID)
	})

	env := crud.Env{CSRF: sessionMgr, Lifecycle: lifecycle}

	authHandler := &handlers.AuthHandler{
		Accounts: accounts,
		Sessions: sessionMgr,
		Renderer: renderer,
		Validate: validate,
	}
	figureHandler := &handlers.FigureHandler{
		Figures:   figureRepo,
		Comments:  commentRepo,
		CatalogDB: sqlDB,
		Sessions:  sessionMgr,
		Renderer:  renderer,
		Validate:  validate,
		Decider:   decider,
		Env:       env,
	}
	imageHandler := &handlers.ImageHandler{
		Images:    imageRepo,
		Figures:   figureRepo,
		Processor: mediaProcessor,
		Store:     mediaStore,
		Sessions:  sessionMgr,
		Renderer:  renderer,
		Decider:   decider,
		Env:       env,
		MaxUpload: cfg.MaxUploadBytes,
	}
	videoHandler := &handlers.VideoHandler{
		Videos:   videoRepo,
		Figures:  figureRepo,
		Sessions: sessionMgr,
		Renderer: renderer,
		Validate: validate,
		Decider:  decider,
		Env:      env,
	}
	commentHandler := &handlers.CommentHandler{
		Comments: commentRepo,
		Figures:  figureRepo,
		Sessions: sessionMgr,
		Renderer: renderer,
		Decider:  decider,
		Env:      env,
	}
	profileHandler := &handlers.ProfileHandler{
		Users:     userRepo,
		Processor: mediaProcessor,
		Store:     mediaStore,
		Sessions:  sessionMgr,
		Renderer:  renderer,
		MaxUpload: cfg.MaxUploadBytes,
	}

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)
	r.Use(handlers.LoadUser(sessionMgr, userRepo))

	// public pages
	r.Get("/", figureHandler.Home)
	r.Get("/figures", figureHandler.Home)
	r.Get("/figures/{slug}", figureHandler.Show)

	// account lifecycle
	r.Get("/register", authHandler.ShowRegister)
	r.Post("/register", authHandler.Register)
	r.Get("/activate/{token}", authHandler.Activate)
	r.Get("/login", authHandler.ShowLogin)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)
	r.Get("/logout", authHandler.Logout)
	r.Get("/forgot-password", authHandler.ShowForgotPassword)
	r.Post("/forgot-password", authHandler.ForgotPassword)
	r.Get("/reset-password/{token}", authHandler.ShowResetPassword)
	r.Post("/reset-password/{token}", authHandler.ResetPassword)

	// everything below needs a signed-in user
	r.Group(func(r chi.Router) {
		r.Use(handlers.RequireUser(sessionMgr))

		r.Get("/figures/new", figureHandler.New)
		r.Post("/figures/new", figureHandler.New)
		r.Get("/figures/{slug}/edit", figureHandler.Edit)
		r.Post("/figures/{slug}/edit", figureHandler.Edit)
		r.Post("/figures/{id}/delete", figureHandler.Delete)
		r.Post("/figures/{id}/main-image/{imageID}", figureHandler.SetMainImage)

		r.Get("/figures/{slug}/images/new", imageHandler.Add)
		r.Post("/figures/{slug}/images/new", imageHandler.Add)
		r.Get("/figures/{slug}/images/{imageID}/edit", imageHandler.Edit)
		r.Post("/figures/{slug}/images/{imageID}/edit", imageHandler.Edit)
		r.Post("/images/{id}/delete", imageHandler.Delete)

		r.Get("/figures/{slug}/videos/new", videoHandler.Add)
		r.Post("/figures/{slug}/videos/new", videoHandler.Add)
		r.Get("/figures/{slug}/videos/{videoID}/edit", videoHandler.Edit)
		r.Post("/figures/{slug}/videos/{videoID}/edit", videoHandler.Edit)
		r.Post("/videos/{id}/delete", videoHandler.Delete)

		r.Post("/figures/{slug}/comments", commentHandler.Add)
		r.Post("/comments/{id}/delete", commentHandler.Delete)

		r.Get("/profile", profileHandler.Show)
		r.Post("/profile/avatar", profileHandler.UploadAvatar)
	})

	// processed uploads and the stylesheet
	r.Get("/media/*", handlers.AssetServer(cfg.MediaStoragePath, "/media/"))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s (base URL %s)", cfg.ListenAddr, cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("FATAL: Server failed: %v", err)
	}
}
