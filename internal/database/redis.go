package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 3 * time.Second

var (
	client *redis.Client
	once   sync.Once

	err error
)

var ErrRedisNotConfigured = errors.New("redis address not configured")

// ConnectToRedisClient abre a conexão compartilhada com o Redis. Chamadas
// seguintes devolvem o mesmo cliente (ou o mesmo erro).
func ConnectToRedisClient(ctx context.Context, addr string, poolSize int) (*redis.Client, error) {
	once.Do(func() {
		log.Println("⚙️  Iniciando conexão com o Redis...")

		if addr == "" {
			err = ErrRedisNotConfigured
			log.Printf("❌ %s", err)
			return
		}

		c := redis.NewClient(&redis.Options{
			Addr:         addr,
			PoolSize:     poolSize,
			MinIdleConns: max(poolSize/8, 1),
		})

		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		if pingErr := c.Ping(pingCtx).Err(); pingErr != nil {
			err = fmt.Errorf("falha ao conectar com o Redis em %s: %w", addr, pingErr)
			log.Printf("❌ %s", err.Error())
			_ = c.Close()
			return
		}

		log.Println("✅ Cliente Redis conectado e pronto para uso!")
		client = c
	})

	return client, err
}

func CloseRedisClient() {
	if client != nil {
		if err := client.Close(); err != nil {
			log.Printf("Erro ao fechar o cliente Redis: %v", err)
		}
	}
}
