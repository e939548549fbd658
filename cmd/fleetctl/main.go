package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/auth"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/config"
)

// fleetctl 运维命令行：查车辆、手动触发对账。
var (
	apiAddr string

	statusColors = map[string]*color.Color{
		"active":      color.New(color.FgGreen),
		"maintenance": color.New(color.FgYellow),
		"idle":        color.New(color.FgCyan),
	}
)

func main() {
	root := &cobra.Command{
		Use:           "fleetctl",
		Short:         "SmartFleetOps 运维命令行",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&apiAddr, "addr", "http://localhost:8080", "fleet-service 地址")

	root.AddCommand(newVehiclesCmd(), newReconcileCmd(), newStatusCmd(), newTokenCmd())

	if err := root.Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

type vehicleView struct {
	ID               string  `json:"id"`
	PlateNumber      string  `json:"plate_number"`
	Model            string  `json:"model"`
	Status           string  `json:"status"`
	AssignedDriverID *string `json:"assigned_driver_id"`
}

func newVehiclesCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "车辆查询",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "列出车辆（可按状态过滤）",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := apiAddr + "/api/v1/vehicles"
			if status != "" {
				url += "?status=" + status
			}
			var out struct {
				Items []vehicleView `json:"items"`
				Total int64         `json:"total"`
			}
			if err := getJSON(url, &out); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLATE\tMODEL\tSTATUS\tDRIVER")
			for _, v := range out.Items {
				drv := "-"
				if v.AssignedDriverID != nil {
					drv = *v.AssignedDriverID
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.PlateNumber, v.Model, colorStatus(v.Status), drv)
			}
			w.Flush()
			fmt.Printf("total: %d\n", out.Total)
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "按状态过滤：active / maintenance / idle")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "查看单辆车",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v vehicleView
			if err := getJSON(apiAddr+"/api/v1/vehicles/"+args[0], &v); err != nil {
				return err
			}
			drv := "-"
			if v.AssignedDriverID != nil {
				drv = *v.AssignedDriverID
			}
			fmt.Printf("id:      %s\nplate:   %s\nmodel:   %s\nstatus:  %s\ndriver:  %s\n",
				v.ID, v.PlateNumber, v.Model, colorStatus(v.Status), drv)
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newReconcileCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "手动触发一轮对账",
		RunE: func(cmd *cobra.Command, args []string) error {
			var body io.Reader
			if date != "" {
				if _, err := time.Parse("2006-01-02", date); err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD")
				}
				payload, _ := json.Marshal(map[string]string{"date": date})
				body = bytes.NewReader(payload)
			}

			resp, err := http.Post(apiAddr+"/api/v1/reconcile", "application/json", body)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return httpError(resp)
			}

			var report struct {
				Today    time.Time `json:"today"`
				Computed int       `json:"computed"`
				Failed   int       `json:"failed"`
				Applied  []struct {
					Kind   string `json:"kind"`
					ID     string `json:"id"`
					Reason string `json:"reason"`
					Error  string `json:"error"`
				} `json:"applied"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
				return err
			}

			fmt.Printf("today: %s, computed: %d, failed: %d\n",
				report.Today.Format("2006-01-02"), report.Computed, report.Failed)
			for _, a := range report.Applied {
				if a.Error != "" {
					color.Red("  FAIL %s/%s (%s): %s", a.Kind, a.ID, a.Reason, a.Error)
				} else {
					fmt.Printf("  ok   %s/%s (%s)\n", a.Kind, a.ID, a.Reason)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "按指定日期跑（YYYY-MM-DD），缺省为今天")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "车队状态汇总（按车辆状态计数）",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range []string{"active", "maintenance", "idle"} {
				var out struct {
					Total int64 `json:"total"`
				}
				if err := getJSON(apiAddr+"/api/v1/vehicles?status="+s+"&page_size=1", &out); err != nil {
					return err
				}
				fmt.Printf("%-13s %d\n", colorStatus(s), out.Total)
			}
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		secret   string
		issuer   string
		audience string
		subject  string
		roles    []string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发一个运维用的 JWT（需要与服务端相同的 jwt_secret）",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, expiresAt, err := auth.GenerateAccessToken(config.AuthConfig{
				JWTSecret: secret,
				Issuer:    issuer,
				Audience:  audience,
			}, subject, roles, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			fmt.Fprintf(os.Stderr, "expires at: %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 密钥")
	cmd.Flags().StringVar(&issuer, "issuer", "smartfleetops", "iss")
	cmd.Flags().StringVar(&audience, "audience", "fleet-api", "aud")
	cmd.Flags().StringVar(&subject, "subject", "ops", "sub")
	cmd.Flags().StringSliceVar(&roles, "roles", []string{"ops"}, "角色列表")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "有效期")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}

func colorStatus(s string) string {
	if c, ok := statusColors[s]; ok {
		return c.Sprint(s)
	}
	return s
}

func getJSON(url string, out any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func httpError(resp *http.Response) error {
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(resp.Body)
	if json.Unmarshal(data, &e) == nil && e.Message != "" {
		return fmt.Errorf("%s (%s)", e.Message, e.Code)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
