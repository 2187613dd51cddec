package main

import (
	"context"
	"fmt"
	"job-portal/internal/domain"
	"job-portal/internal/infrastructure/redis"
	"os"
	"strconv"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
)

type publishOptions struct {
	redisAddr     string
	redisPassword string
	redisDB       int
	channel       string
	timeout       time.Duration

	kind             string
	userIDs          []string
	excludeUserIDs   []string
	notificationType string
	message          string
	data             map[string]string
	jobID            string
	jobTitle         string
	applicantsOnly   bool
	applicationID    string
	status           string
	userName         string
}

// NewCommand returns the publisher command. Portal jobs and operators use it to
// push a dispatch command to every running notification-service instance.
func NewCommand() *cobra.Command {
	opts := &publishOptions{
		redisAddr:     envOr("REDIS_ADDRESS", "localhost:6379"),
		redisPassword: os.Getenv("REDIS_PASSWORD"),
		redisDB:       envIntOr("REDIS_DB", 0),
		channel:       envOr("RELAY_CHANNEL", redis.DefaultCommandChannel),
		timeout:       5 * time.Second,
	}

	cmd := &cobra.Command{
		Use:   "notify-publish",
		Short: "Publish a notification dispatch command on the relay channel",
		Long: `Publish a dispatch command to Redis. Every notification-service instance
subscribed to the channel applies it to its own sockets. Delivery is fire-and-forget.`,
		Example: `  notify-publish --kind user --user u1 --type success --message "Profile approved"
  notify-publish --kind broadcast --exclude admin-1 --message "Maintenance at 22:00"
  notify-publish --kind job --job-id j1 --job-title "Go Engineer" --applicants-only --message "Position filled"
  notify-publish --kind application_status --user u1 --application-id a1 --job-id j1 --status interview`,
		Args:          cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", opts.redisAddr, "Redis address (env REDIS_ADDRESS)")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", opts.redisPassword, "Redis password (env REDIS_PASSWORD)")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", opts.redisDB, "Redis database (env REDIS_DB)")
	cmd.Flags().StringVar(&opts.channel, "channel", opts.channel, "Relay channel (env RELAY_CHANNEL)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "Timeout for connecting and publishing")

	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "", "Command kind: user, many, broadcast, job, application_status, user_registered")
	cmd.Flags().StringSliceVarP(&opts.userIDs, "user", "u", nil, "Target user ids (comma-separated)")
	cmd.Flags().StringSliceVar(&opts.excludeUserIDs, "exclude", nil, "User ids to skip on broadcast (comma-separated)")
	cmd.Flags().StringVarP(&opts.notificationType, "type", "t", "", "Notification type: info, success, warning, error")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "Notification message")
	cmd.Flags().StringToStringVar(&opts.data, "data", nil, "Extra payload fields (key=value,...)")
	cmd.Flags().StringVar(&opts.jobID, "job-id", "", "Job id for job and application_status commands")
	cmd.Flags().StringVar(&opts.jobTitle, "job-title", "", "Job title for job commands")
	cmd.Flags().BoolVar(&opts.applicantsOnly, "applicants-only", false, "Notify only the job's applicants")
	cmd.Flags().StringVar(&opts.applicationID, "application-id", "", "Application id for application_status commands")
	cmd.Flags().StringVar(&opts.status, "status", "", "New application status")
	cmd.Flags().StringVar(&opts.userName, "user-name", "", "Display name for user_registered commands")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func runPublish(cmd *cobra.Command, opts *publishOptions) error {
	dispatch := opts.command()
	if err := dispatch.Validate(); err != nil {
		return err
	}

	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     opts.redisAddr,
		Password: opts.redisPassword,
		DB:       opts.redisDB,
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	if err := redis.NewCommandPublisher(rdb, opts.channel).PublishCommand(ctx, dispatch); err != nil {
		return fmt.Errorf("failed to publish %s command: %w", dispatch.Kind, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "published %s command to %s\n", dispatch.Kind, opts.channel)
	return nil
}

func (o *publishOptions) command() *domain.DispatchCommand {
	var data map[string]interface{}
	if len(o.data) > 0 {
		data = make(map[string]interface{}, len(o.data))
		for k, v := range o.data {
			data[k] = v
		}
	}

	return &domain.DispatchCommand{
		Kind:             domain.CommandKind(o.kind),
		UserIDs:          o.userIDs,
		ExcludeUserIDs:   o.excludeUserIDs,
		NotificationType: domain.NotificationType(o.notificationType),
		Message:          o.message,
		Data:             data,
		JobID:            o.jobID,
		JobTitle:         o.jobTitle,
		ApplicantsOnly:   o.applicantsOnly,
		ApplicationID:    o.applicationID,
		Status:           domain.ApplicationStatus(o.status),
		UserName:         o.userName,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}
