/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Seednode/atlas/games/atlas"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	playerCookieName = "atlas_id"
	qrSize           = 320
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func newAtlasGame(cfg *Config) *atlas.Game {
	var places atlas.PlaceService
	if cfg.offline {
		places = atlas.DefaultPlaces()
	} else {
		places = atlas.NewHTTPPlaces(cfg.placesURL, &http.Client{Timeout: cfg.placesTimeout})
	}

	var firstLetter byte
	if cfg.firstLetter != "" {
		firstLetter = strings.ToLower(cfg.firstLetter)[0]
	}

	return atlas.New(atlas.Config{
		Rules: atlas.RoomConfig{
			Lives:       cfg.lives,
			Hints:       cfg.hints,
			TurnTime:    cfg.turnTime,
			FirstLetter: firstLetter,
		},
		BotDelay:      cfg.botDelay,
		PlacesTimeout: cfg.placesTimeout,
		PlayerTimeout: cfg.playerTimeout,
		RateLimit:     cfg.rateLimit,
		RateBurst:     cfg.rateBurst,
	}, places, cfg.logger.With().Str("game", "atlas").Logger())
}

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}

	if r.TLS != nil {
		return "https"
	}

	return "http"
}

func serveAtlasPage(cfg *Config, path string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		body := fmt.Sprintf("Connect a client to %s%s/ws to play.", cfg.prefix, path)
		if room := r.URL.Query().Get("room"); room != "" {
			if id, err := strconv.Atoi(room); err == nil {
				body = fmt.Sprintf("Connect a client to %s%s/ws and join room %d to play.", cfg.prefix, path, id)
			}
		}

		_, _ = w.Write([]byte(newPage("Atlas", body)))
	}
}

func serveAtlasSocket(cfg *Config, game *atlas.Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		playerID := getOrSetPlayerID(w, r)

		header := http.Header{}
		for _, c := range w.Header().Values("Set-Cookie") {
			header.Add("Set-Cookie", c)
		}

		conn, err := upgrader.Upgrade(w, r, header)
		if err != nil {
			logf(cfg, "ATLAS: Websocket upgrade for %s failed: %v", realIP(r), err)

			return
		}

		logf(cfg, "ATLAS: Player %s connected from %s", playerID, realIP(r))

		game.Serve(r.Context(), conn, playerID)

		logf(cfg, "ATLAS: Player %s disconnected", playerID)
	}
}

func serveAtlasRooms(cfg *Config, game *atlas.Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		rooms := game.OpenRooms(r.Context())
		if rooms == nil {
			rooms = []atlas.RoomSummary{}
		}

		data, err := json.Marshal(rooms)
		if err != nil {
			errs <- err

			http.Error(w, "unable to list rooms", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Room list (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveAtlasQR(cfg *Config, path string, game *atlas.Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, err := strconv.Atoi(ps.ByName("roomid"))
		if err != nil {
			http.Error(w, "invalid room id", http.StatusBadRequest)

			return
		}

		open := false
		for _, room := range game.OpenRooms(r.Context()) {
			if room.ID == id {
				open = true

				break
			}
		}

		if !open {
			http.Error(w, atlas.ErrRoomNotAvailable.Error(), http.StatusNotFound)

			return
		}

		link := fmt.Sprintf("%s://%s%s%s?room=%d", requestScheme(r), r.Host, cfg.prefix, path, id)

		png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
		if err != nil {
			errs <- err

			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		_, err = w.Write(png)
		if err != nil {
			errs <- err
		}
	}
}

// registerAtlasGame sets up routes so that:
//   - $path                  → landing page, assigns the identity cookie
//   - $path/ws               → websocket for every room
//   - $path/rooms            → JSON list of joinable rooms
//   - $path/rooms/:roomid/qr → PNG QR code linking to a room
func registerAtlasGame(cfg *Config, path string, mux *httprouter.Router, game *atlas.Game, errs chan<- error) {
	mux.GET(cfg.prefix+path, serveAtlasPage(cfg, path))

	mux.GET(cfg.prefix+path+"/ws", serveAtlasSocket(cfg, game))

	mux.GET(cfg.prefix+path+"/rooms", serveAtlasRooms(cfg, game, errs))

	mux.GET(cfg.prefix+path+"/rooms/:roomid/qr", serveAtlasQR(cfg, path, game, errs))
}
