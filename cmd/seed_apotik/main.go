// seed_apotik importa apotik y productos desde CSV (';', ISO-8859-1 por defecto) al
// almacenamiento configurado. Los códigos ya existentes se omiten.
//
// Uso: go run ./cmd/seed_apotik -apotik apotik.csv -produk produk.csv [-utf8]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Apotik-api/internal/application/usecase"
	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/memory"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/mongosync"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Apotik-api/pkg/config"
	"github.com/jhoicas/Apotik-api/pkg/logger"
)

type result struct {
	created, skipped int
}

func main() {
	apotikPath := flag.String("apotik", "", "CSV de apotik (kode;nama;alamat;kota;telepon)")
	productPath := flag.String("produk", "", "CSV de productos (kode;nama;kategori;satuan;harga_beli;harga_jual;stok_awal)")
	utf8 := flag.Bool("utf8", false, "el CSV ya está en UTF-8")
	flag.Parse()
	if *apotikPath == "" && *productPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	ctx := context.Background()

	var runner usecase.TxRunner
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema de snapshots")
		}
		runner = postgres.NewTxRunner(pool, nil, log.Component("postgres"))
	default:
		if !cfg.Mongo.Enabled() {
			log.Fatal().Msg("STORE_DRIVER=memory requiere MONGO_URI para persistir la importación")
		}
		remote, err := mongosync.Connect(ctx, cfg.Mongo)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a MongoDB")
		}
		defer remote.Close(context.Background())
		mem := memory.New(memory.WithRemote(remote), memory.WithLogger(log.Component("memory")))
		if err := mem.Refresh(ctx); err != nil {
			log.Fatal().Err(err).Msg("carga del snapshot remoto")
		}
		defer mem.Wait()
		runner = mem
	}

	if *apotikPath != "" {
		res, err := importFile(*apotikPath, !*utf8, func(row map[string]string) error {
			_, err := usecase.NewApotikUseCase(runner).Create(ctx, parseApotik(row))
			return err
		})
		if err != nil {
			log.Fatal().Err(err).Str("file", *apotikPath).Msg("importar apotik")
		}
		log.Info().Int("creadas", res.created).Int("omitidas", res.skipped).Msg("apotik importadas")
	}
	if *productPath != "" {
		res, err := importFile(*productPath, !*utf8, func(row map[string]string) error {
			in, err := parseProduct(row)
			if err != nil {
				return err
			}
			_, err = usecase.NewProductUseCase(runner).Create(ctx, in)
			return err
		})
		if err != nil {
			log.Fatal().Err(err).Str("file", *productPath).Msg("importar productos")
		}
		log.Info().Int("creados", res.created).Int("omitidos", res.skipped).Msg("productos importados")
	}
}

// importFile aplica create a cada fila; los duplicados se cuentan como omitidos.
func importFile(path string, latin1 bool, create func(map[string]string) error) (result, error) {
	f, err := os.Open(path)
	if err != nil {
		return result{}, err
	}
	defer f.Close()
	rows, err := readRows(newReader(f, latin1))
	if err != nil {
		return result{}, err
	}
	return importRows(rows, create)
}

func importRows(rows []map[string]string, create func(map[string]string) error) (result, error) {
	var res result
	for i, row := range rows {
		err := create(row)
		switch {
		case err == nil:
			res.created++
		case errors.Is(err, domain.ErrDuplicate):
			res.skipped++
		default:
			return res, fmt.Errorf("fila %d: %w", i+2, err)
		}
	}
	return res, nil
}
