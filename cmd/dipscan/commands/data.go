package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/dipscan/internal/fanout"
	"github.com/wonny/dipscan/internal/s0_data"
)

// dataCmd represents the data command
var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "입력 데이터 관리",
}

var dataConvertCmd = &cobra.Command{
	Use:   "convert [dest_dir]",
	Short: "CSV 일봉 파일을 Parquet으로 변환",
	Long: `DATA_DIR의 종목별 일봉 파일을 읽어 dest_dir에 <code>.parquet으로 씁니다.
읽기 실패 / 형식 오류 파일은 건너뜁니다.

Example:
  go run ./cmd/dipscan data convert fund_parquet`,
	Args: cobra.ExactArgs(1),
	RunE: convertData,
}

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataConvertCmd)
}

func convertData(cmd *cobra.Command, args []string) error {
	dest := args[0]

	a, err := setup()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	ctx := cmd.Context()
	files, err := a.source.List(ctx)
	if err != nil {
		return err
	}

	errs, err := fanout.Map(ctx, len(files), a.cfg.Workers,
		func(ctx context.Context, i int) error {
			series, err := a.source.Load(ctx, files[i])
			if err != nil {
				return err
			}
			return s0_data.WriteParquetFile(filepath.Join(dest, series.Code+s0_data.ExtParquet), series.Bars)
		},
		func(i int, err error) error { return err },
	)
	if err != nil {
		return err
	}

	converted := 0
	for i, e := range errs {
		if e != nil {
			a.log.WithError(e).WithField("file", files[i].Path).Warn("Skipped file")
			continue
		}
		converted++
	}

	PrintSuccess(fmt.Sprintf("Converted %d of %d instruments into %s", converted, len(files), dest))
	return nil
}
