// token 为运维人员签发访问 Token
//
//	go run ./cmd/token -operator ops-zhang -role admin -ttl 720h
package main

import (
	"flag"
	"fmt"
	"os"

	"dimission-forecast/config"
	"dimission-forecast/pkg/jwt"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	operator := flag.String("operator", "", "操作人标识（必填）")
	role := flag.String("role", jwt.RoleAdmin, "角色：admin 可触发任务，其他角色只读")
	ttl := flag.Duration("ttl", 0, "有效期，缺省使用 auth.access_token_ttl")
	flag.Parse()

	if *operator == "" {
		fmt.Fprintln(os.Stderr, "缺少 -operator")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(*operator, *role, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "签发 Token 失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
