package main

import (
	"fmt"
	"inkbook/src/boot"
	"inkbook/src/config"
	"inkbook/src/db"
	"inkbook/src/middlewares"
	"inkbook/src/models"
	"inkbook/src/types"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
	engineiotypes "github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

const (
	apiPrefix string = "/api/v1"
)

var bookableDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	if ok {
		today := time.Now()
		if today.After(datetime) {
			return false
		}
	}
	return true
}

var gtfield validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	fieldValue := field.Interface().(string)
	fielddatetime, err := time.Parse(config.TIME_PARSE_FORMAT, fieldValue)
	if err != nil {
		return false
	}
	if ok {
		if fielddatetime.After(datetime) || fielddatetime.Equal(datetime) {
			return false
		}
	}
	return true
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			log.Println("server is under maintenance")
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, "server is under maintenance")
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

var (
	wsServer   *socket.Server
	wsServerMu sync.RWMutex
)

func userRoom(userId uint) socket.Room {
	return socket.Room(fmt.Sprintf("user:%d", userId))
}

// emitDirectMessage pushes a freshly persisted message to the
// recipient's presence room, if they are connected.
func emitDirectMessage(recipientId uint, message *models.Message) {
	wsServerMu.RLock()
	wss := wsServer
	wsServerMu.RUnlock()
	if wss == nil {
		return
	}
	wss.Of("/presence", nil).To(userRoom(recipientId)).Emit("message", message)
}

func setupSocketServer(r *gin.Engine) *socket.Server {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	c.SetPingInterval(time.Second)
	c.SetPingTimeout(200 * time.Millisecond)
	c.SetMaxHttpBufferSize(1_000_000)
	c.SetConnectTimeout(time.Second)
	c.SetCors(&engineiotypes.Cors{
		Origin:      "*",
		Credentials: true,
	})

	wss := socket.NewServer(nil, nil)
	wss.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		fmt.Println("[newclient]: ", string(client.Id()), client.Nsp().Name())
		client.On("message", func(args ...any) {
			client.Emit("message-back", args...)
		})
		client.On("message-with-ack", func(args ...any) {
			ack := args[len(args)-1].(socket.Ack)
			ack(args[:len(args)-1], nil)
		})
	})
	ns := wss.Of("/presence", nil)
	ns.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		fmt.Println("[newclient]: ", string(client.Id()), client.Nsp().Name())
		auth, ok := client.Handshake().Auth.(map[string]any)
		if !ok {
			return
		}
		uid, ok := auth["user_id"].(string)
		if !ok {
			return
		}
		atoi, err := strconv.Atoi(uid)
		if err != nil {
			return
		}
		userId := uint(atoi)
		client.Join(userRoom(userId))
		ns.Emit("presence", map[string]any{"user_id": userId, "online": true})
		client.On("disconnect", func(...any) {
			ns.Emit("presence", map[string]any{"user_id": userId, "online": false})
		})
	})
	wsServerMu.Lock()
	wsServer = wss
	wsServerMu.Unlock()

	r.GET("/socket.io/*any", gin.WrapH(wss.ServeHandler(c)))
	r.POST("/socket.io/*any", gin.WrapH(wss.ServeHandler(c)))
	return wss
}

func dashboardRoute(g *gin.RouterGroup) *gin.RouterGroup {
	g.GET("/dashboard", func(ctx *gin.Context) {
		userId := ctx.GetUint("id")
		role := types.UserRole(ctx.GetString("role"))
		var upcoming []models.Booking
		var pendingDeposits int64
		var unread int64
		db := db.GetDb()
		err := db.Transaction(func(tx *gorm.DB) error {
			scope := tx.Model(&models.Booking{})
			if role == types.ROLE_ARTIST {
				scope = scope.Where("artist_id = ?", userId)
			} else {
				scope = scope.Where("client_id = ?", userId)
			}
			if err := scope.
				Where("status = ? AND start_at > ?", types.BOOKING_BOOKED, time.Now()).
				Order("start_at asc").
				Limit(10).
				Preload("Service").
				Find(&upcoming).
				Error; err != nil {
				return err
			}
			pending := tx.Model(&models.Booking{})
			if role == types.ROLE_ARTIST {
				pending = pending.Where("artist_id = ?", userId)
			} else {
				pending = pending.Where("client_id = ?", userId)
			}
			if err := pending.
				Where("status = ?", types.BOOKING_PENDING).
				Count(&pendingDeposits).
				Error; err != nil {
				return err
			}
			return tx.
				Model(&models.Message{}).
				Where("recipient_id = ? AND read_at IS NULL", userId).
				Count(&unread).
				Error
		})
		if err != nil {
			log.Printf("Error building dashboard for user %d: %s\n", userId, err.Error())
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"upcoming":         upcoming,
			"pending_deposits": pendingDeposits,
			"unread_messages":  unread,
		})
	})
	return g
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitScheduler()
	go boot.InitBroker()

	router := setupRouter()
	wss := setupSocketServer(router)
	if wss != nil {
		log.Println("WS server listening for connections...")
	}

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			if match {
				return true
			}
			match, _ = regexp.MatchString("app:mobile", origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookableDateValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
	}

	router = maintenanceModeMiddleware(router)

	waitlistRoutes(router)

	stripeWebhookRoute(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized.
			GET("/users/me", func(ctx *gin.Context) {
				var user models.User
				userId := ctx.GetUint("id")
				db := db.GetDb()
				if err := db.Transaction(func(tx *gorm.DB) error {
					return tx.
						Where(&models.User{ID: userId}).
						First(&user).
						Error
				}); err != nil {
					ctx.Status(http.StatusBadRequest)
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"data": user})
			})

		authorized = bookingHandlers(authorized)
		authorized = artistHandlers(authorized)
		authorized = billingHandlers(authorized)
		authorized = intakeHandlers(authorized)
		authorized = messageHandlers(authorized)
		authorized = dashboardRoute(authorized)
	}

	defer boot.StopScheduler()

	if os.Getenv("TLS_ENABLE") == "true" {
		cwd, _ := os.Getwd()
		certpath := path.Join(cwd, "certificates", "localhost.pem")
		keypath := path.Join(cwd, "certificates", "localhost-key.pem")
		if err := router.RunTLS(":9090", certpath, keypath); err != nil {
			log.Fatalf("Failed to start server: %s", err)
		}
	}
	if err := router.Run(":9090"); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
